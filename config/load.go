package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation. An
// empty path searches the default locations; when no file exists the
// defaults are returned as-is.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = filepath.Dir(absPath)
	cfg.resolvePaths()
	return cfg, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > DOCUFAB_CONFIG env > ./docufab.yaml >
// ~/.config/docufab/docufab.yaml. Returns "" when nothing is found and
// no explicit path was given.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("DOCUFAB_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("DOCUFAB_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("docufab.yaml"); err == nil {
		return "docufab.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "docufab", "docufab.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}
