package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const envFileVar = "DCAD_ENV_FILE"

func main() {
	if err := loadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.OutOrStderr(), err)
		os.Exit(1)
	}
}

// loadEnv reads $DCAD_ENV_FILE, which must exist when set, or an optional
// ./.env.
func loadEnv() error {
	path := os.Getenv(envFileVar)
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
