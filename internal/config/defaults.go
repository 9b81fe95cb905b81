package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// FieldDefaults holds the last-used manual-entry field values, persisted
// between sessions as a plain JSON document with no schema versioning.
type FieldDefaults struct {
	Date       string `json:"date"`
	Payee      string `json:"payee"`
	Amount     string `json:"amount"`
	Category   string `json:"category"`
	Note       string `json:"note"`
	Account    string `json:"account"`
	TransferTo string `json:"transfer_to"`
}

// LoadDefaults reads the field defaults from path. An absent or unparsable
// file yields zero defaults, never an error.
func LoadDefaults(path string) FieldDefaults {
	var d FieldDefaults
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Field defaults not readable, using empty defaults", "path", path, "error", err)
		}
		return d
	}
	if err := json.Unmarshal(data, &d); err != nil {
		slog.Warn("Field defaults corrupt, using empty defaults", "path", path, "error", err)
		return FieldDefaults{}
	}
	return d
}

// SaveDefaults writes the field defaults to path.
func SaveDefaults(path string, d FieldDefaults) error {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode field defaults: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write field defaults %s: %w", path, err)
	}
	return nil
}
