package config

import (
	"os"
	"strings"
)

// getEnv retrieves an environment variable value.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrFile retrieves a value from either a direct environment variable
// or a file path specified by the file key (Docker secrets pattern).
//
// If both are set, the file takes precedence. The file contents are trimmed
// of leading/trailing whitespace.
func getEnvOrFile(directKey, fileKey string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return os.Getenv(directKey)
}

// getEnvWithFileFallback retrieves a value supporting the _FILE suffix pattern.
// Given a key like "KEACONV_SSH_PASSWORD", it checks:
//  1. KEACONV_SSH_PASSWORD_FILE - reads file contents if set
//  2. KEACONV_SSH_PASSWORD - returns direct value if set
func getEnvWithFileFallback(key string) string {
	return getEnvOrFile(key, key+"_FILE")
}
