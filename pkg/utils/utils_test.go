package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "invoice.log")
		logger, err := NewLogger(LoggerConfig{Level: "debug", OutputPath: path, Format: "json"})
		require.NoError(t, err)

		logger.Info("Invoice generated")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"Invoice generated"`)
		assert.Contains(t, string(content), `"timestamp"`)
	})

	t.Run("console file has no color codes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "console.log")
		logger, err := NewLogger(LoggerConfig{Level: "info", OutputPath: path, Format: "console"})
		require.NoError(t, err)

		logger.Warn("Keeping unparseable value as entered")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "WARN")
		assert.NotContains(t, string(content), "\x1b[")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "level.log")
		logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: path, Format: "json"})
		require.NoError(t, err)

		logger.Debug("hidden")
		logger.Info("shown")
		require.NoError(t, logger.Sync())

		content, _ := os.ReadFile(path)
		assert.NotContains(t, string(content), "hidden")
		assert.Contains(t, string(content), "shown")
	})
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("10/09/2025"))
	assert.NoError(t, ValidateDate("29/02/2024"))
	assert.Error(t, ValidateDate("29/02/2025"))
	assert.Error(t, ValidateDate("2025-09-10"))
	assert.Error(t, ValidateDate(""))
}

func TestToday(t *testing.T) {
	assert.Equal(t, "05/03/2025", Today(time.Date(2025, 3, 5, 23, 59, 0, 0, time.UTC)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Dupont SARL", SanitizeString("Dupont\x00 SARL\x1b"))
	assert.Equal(t, "ligne 1\nligne 2\tfin", SanitizeString("ligne 1\nligne 2\tfin"))
}
