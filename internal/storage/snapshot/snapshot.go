// Package snapshot reads and writes the whole ledger as a single JSON
// document: users, and for every group its members, expenses with their
// computed shares, and settlements.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the root of the data file.
type Snapshot struct {
	Users  []User  `json:"users"`
	Groups []Group `json:"groups"`
}

// User is a registered person.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Group holds a group's members and full history.
type Group struct {
	Name        string       `json:"name"`
	Members     []string     `json:"members"`
	Expenses    []Expense    `json:"expenses"`
	Settlements []Settlement `json:"settlements"`
}

// Expense is stored with its already computed shares so it can be
// restored without re-running the split.
type Expense struct {
	Description  string             `json:"description"`
	Amount       float64            `json:"amount"`
	PaidBy       string             `json:"paid_by"`
	Participants []string           `json:"participants"`
	Shares       map[string]float64 `json:"shares"`
}

// Settlement is a direct payment between two members.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Load reads a snapshot from path. A missing or empty file yields an empty
// snapshot and no error.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(data) == 0 {
		return &Snapshot{}, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	return &snap, nil
}

// Save writes the snapshot to path as indented JSON, replacing any existing file.
func Save(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Write next to the target and rename so a failed write keeps the old file.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".splitsmart-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}
