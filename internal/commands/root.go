package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"library-backend/internal/platform/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Library management backend",
	Long: `library serves the book / loan / student REST API and its React frontend.

Commands:
  serve          start the HTTP(S) server
  migrate        create tables and indexes for the configured store
  hash-password  print a bcrypt hash for auth.users`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config.yaml")
}
