// Package config loads typed configuration structs from the environment,
// optionally seeded from a .env file given via the -env flag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFilePath string
	flagOnce    sync.Once
)

// New populates T from environment variables carrying the given prefix.
// On the first call it also exports the -env file (or ./.env when present)
// into the process environment so later loads see the same values.
func New[T any](prefix string) (*T, error) {
	if err := seedEnvironment(); err != nil {
		return nil, err
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("process env prefix=%s: %w", prefix, err)
	}
	return &conf, nil
}

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

func seedEnvironment() error {
	flagOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})

	if path := strings.TrimSpace(envFilePath); path != "" {
		if err := exportEnvFile(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}

	// Fallback: a .env next to the binary, if one exists.
	info, err := os.Stat(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if err := exportEnvFile(".env"); err != nil {
		return fmt.Errorf("load default env file: %w", err)
	}
	return nil
}

func exportEnvFile(path string) error {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}

	for k, v := range viper.AllSettings() {
		if err := os.Setenv(strings.ToUpper(k), fmt.Sprint(v)); err != nil {
			return err
		}
	}
	return nil
}
