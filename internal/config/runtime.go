package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves TUSKMEM_RUNTIME_PATH against the home directory
// when it is relative. It is needed before AppConfig exists, to find .env.
func GetRuntimePath() string {
	path := os.Getenv("TUSKMEM_RUNTIME_PATH")
	if path == "" {
		path = ".tuskmem"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
