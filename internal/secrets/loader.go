package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
	// Env names an environment variable to fall back to when neither File
	// nor Value are set.
	Env string
}

// Load returns the resolved secret value from the provided source. File takes
// precedence over Value, which takes precedence over Env. The returned secret
// is always trimmed. An error is returned when no usable secret is found.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	if strings.TrimSpace(src.Value) == "" && src.Env != "" {
		src.Value = os.Getenv(src.Env)
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		if src.Env != "" {
			return "", fmt.Errorf("%s is not configured (set %s)", name, src.Env)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
