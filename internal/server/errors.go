package server

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/service"
)

// toConnectError maps service errors onto connect status codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var validationErr *calculator.ValidationError
	switch {
	case errors.As(err, &validationErr), errors.Is(err, service.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrGroupNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrGroupExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, service.ErrPayerNotMember),
		errors.Is(err, service.ErrNoParticipants),
		errors.Is(err, calculator.ErrUnknownParticipant):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
