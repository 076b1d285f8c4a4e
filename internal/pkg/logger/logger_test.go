package logger

import (
	"os"
	"path/filepath"
	"testing"

	"shortr/internal/platform/config"
)

func TestOutput(t *testing.T) {
	out, err := output(config.LoggingConfig{Output: "stdout"})
	if err != nil || out != os.Stdout {
		t.Errorf("Expected stdout, got %v (%v)", out, err)
	}

	path := filepath.Join(t.TempDir(), "nested", "shortr.log")
	out, err = output(config.LoggingConfig{Output: "file", FilePath: path})
	if err != nil {
		t.Fatalf("output() error = %v", err)
	}
	defer out.(*os.File).Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected log file to be created: %v", err)
	}
}
