package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest CSV the pipeline accepts.
const MaxFileSize = 10 * 1024 * 1024

// FileInfo describes a candidate upload file.
type FileInfo struct {
	Name string
	Size int64
	Path string
}

// ValidationError reports a pre-flight check failure. The message is
// user-facing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateFile runs the synchronous pre-flight checks in fixed order; the
// first failing check wins and later checks are skipped.
func ValidateFile(file FileInfo) error {
	if !strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
		return &ValidationError{Message: "Please select a CSV file"}
	}
	if file.Size > MaxFileSize {
		return &ValidationError{Message: "File size must be less than 10MB"}
	}
	if file.Size == 0 {
		return &ValidationError{Message: "File appears to be empty"}
	}
	return nil
}

// FileInfoFromPath stats a file on disk and builds its FileInfo.
func FileInfoFromPath(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat upload file: %w", err)
	}
	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("upload path %q is a directory", path)
	}
	return FileInfo{
		Name: filepath.Base(path),
		Size: info.Size(),
		Path: path,
	}, nil
}
