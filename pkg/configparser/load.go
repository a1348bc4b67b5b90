package configparser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadAndParseYaml loads an optional .env file and the YAML config into the
// environment, then fills cfg from `env` / `default` struct tags.
// Variables already present in the environment always win.
func LoadAndParseYaml(filepath string, cfg any) error {
	if err := LoadDotEnv(".env"); err != nil {
		return err
	}

	if err := LoadYamlFile(filepath); err != nil && !errors.Is(err, ErrNoFilePath) {
		return err
	}

	return ParseStruct(cfg)
}

// LoadDotEnv loads KEY=VALUE pairs from path. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not load %s: %w", path, err)
	}
	return nil
}

// LoadYamlFile reads a YAML file and loads variables into the environment.
// Nested keys are joined with "_" and upper-cased: database.host -> DATABASE_HOST.
// Values of the form ${VAR:-default} are resolved against the environment.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read YAML file: %w", err)
	}

	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if value == "" {
			continue
		}

		value = expand(strings.Trim(value, `"'`))
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))

		// Set the environment variable only if it's not already set
		if os.Getenv(envKey) == "" {
			if err := os.Setenv(envKey, value); err != nil {
				return fmt.Errorf("could not set env var %s: %w", envKey, err)
			}
		}
	}

	return nil
}

// expand handles the ${VAR:-default} substitution syntax.
func expand(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}

	inner := value[2 : len(value)-1]
	name, def, found := strings.Cut(inner, ":-")
	if envValue := os.Getenv(strings.TrimSpace(name)); envValue != "" {
		return envValue
	}
	if found {
		return strings.TrimSpace(def)
	}
	return ""
}
