package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	flagHome   = "home"
	envHome    = "DCAD_HOME"
	appDirName = ".dcad"
)

func defaultHome() string {
	if home := os.Getenv(envHome); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(userHome, appDirName)
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dcad",
		Short:         "DCA vault keeper and chain simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(flagHome, defaultHome(), "directory for config and data")

	InitRootCmd(rootCmd)
	return rootCmd
}

func homeDir(cmd *cobra.Command) string {
	home, _ := cmd.Flags().GetString(flagHome)
	return home
}
