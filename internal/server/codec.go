package server

import (
	"encoding/json"
	"fmt"
)

// jsonCodec serializes plain Go structs for connect. It replaces connect's
// built-in "json" codec, which only accepts protobuf messages.
//
// Field names follow the Go structs' json tags, not protojson's mapping,
// and there is no "proto" codec registered. Only clients built with this
// codec (or plain HTTP clients posting JSON) can call the service; generated
// protobuf clients cannot.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
