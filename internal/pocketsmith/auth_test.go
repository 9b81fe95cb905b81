package pocketsmith

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandos21/pocketsync/internal/common"
)

var testKey = strings.Repeat("k", 128)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		key     string
	}{
		{name: "valid key", key: testKey},
		{name: "empty key", key: "", wantErr: common.ErrMissingKey},
		{name: "too short", key: "abc123", wantErr: common.ErrInvalidKey},
		{name: "too long", key: testKey + "x", wantErr: common.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadKey(t *testing.T) {
	t.Run("valid key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keyFile.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"ApiKey": "`+testKey+`"}`), 0o600))

		key, err := LoadKey(path)
		require.NoError(t, err)
		assert.Equal(t, testKey, key)
	})

	t.Run("missing file creates template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keyFile.json")

		_, err := LoadKey(path)
		assert.ErrorIs(t, err, common.ErrMissingKey)

		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Contains(t, string(data), `"ApiKey"`)
	})

	t.Run("unparsable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keyFile.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		_, err := LoadKey(path)
		assert.Error(t, err)
	})

	t.Run("wrong length key in file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keyFile.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"ApiKey": "short"}`), 0o600))

		_, err := LoadKey(path)
		assert.ErrorIs(t, err, common.ErrInvalidKey)
	})
}
