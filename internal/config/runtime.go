package config

import (
	"os"
	"path/filepath"
)

const runtimeEnv = "KAGGLEBOT_RUNTIME_PATH"

// GetRuntimePath resolves the runtime directory before any config is parsed,
// so the .env file inside it can be loaded first.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv(runtimeEnv))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".kagglebot"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

// IsDebug reports KAGGLEBOT_DEBUG=1. It is read before any .env file is
// loaded, so only the process environment counts.
func IsDebug() bool {
	return os.Getenv("KAGGLEBOT_DEBUG") == "1"
}
