package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// FolderManager resolves generated document names inside the output directory
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	return &FolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// EnsureOutputFolder creates the output directory if it does not exist
func (m *FolderManager) EnsureOutputFolder() error {
	if m.baseDir == "" {
		return fmt.Errorf("cannot create folder: empty output directory")
	}
	if err := os.MkdirAll(m.baseDir, 0755); err != nil {
		m.logger.Error("Failed to create output folder",
			zap.String("folder_path", m.baseDir),
			zap.Error(err))
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

// PathFor returns the full path of a file name inside the output directory
func (m *FolderManager) PathFor(fileName string) string {
	return filepath.Join(m.baseDir, filepath.Base(fileName))
}

// FileExists reports whether a regular file with that name is in the output directory
func (m *FolderManager) FileExists(fileName string) bool {
	info, err := os.Stat(m.PathFor(fileName))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// SanitizeName returns a filesystem-safe version of the name.
// Only ASCII letters, digits, hyphens and underscores survive.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeNameChars.ReplaceAllString(name, "")
}
