package pocketsmith

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gandos21/pocketsync/internal/common"
)

// keyLength is the fixed length of a PocketSmith developer key.
const keyLength = 128

// keyFile is the on-disk shape of the developer key file.
type keyFile struct {
	APIKey string `json:"ApiKey"`
}

// LoadKey reads and validates the developer key from path. When the file is
// missing, a template file is written so the user knows where to put the key.
// A key can be obtained from the PocketSmith settings menu (Security &
// connections -> Manage developer keys).
func LoadKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			template, _ := json.MarshalIndent(keyFile{}, "", "    ")
			if writeErr := os.WriteFile(path, append(template, '\n'), 0o600); writeErr != nil {
				return "", fmt.Errorf("failed to create key file %s: %w", path, writeErr)
			}
			return "", fmt.Errorf("%w: obtain a developer key and save it in %s", common.ErrMissingKey, path)
		}
		return "", fmt.Errorf("failed to read key file %s: %w", path, err)
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return "", fmt.Errorf("failed to parse key file %s: %w", path, err)
	}

	if err := ValidateKey(kf.APIKey); err != nil {
		return "", err
	}
	return kf.APIKey, nil
}

// ValidateKey checks the credential before any remote call is attempted.
func ValidateKey(key string) error {
	if key == "" {
		return common.ErrMissingKey
	}
	if len(key) != keyLength {
		return fmt.Errorf("%w: got %d characters, want %d", common.ErrInvalidKey, len(key), keyLength)
	}
	return nil
}
