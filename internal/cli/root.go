// Package cli implements the localsearch command-line entrypoint.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/localsearch/localsearch/internal/pathutil"
)

var (
	projectFlag     string
	storageRootFlag string
	quietFlag       bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "localsearch",
	Short: "Local, project-scoped semantic code and documentation search",
	Long: `localsearch indexes a project's code and documentation into a local
hybrid vector+full-text store, and serves search over it either as a
one-shot CLI command or as a tool-calling MCP server for AI assistants.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", ".", "project root directory")
	rootCmd.PersistentFlags().StringVar(&storageRootFlag, "storage-root", "", "override the default index storage root")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress progress output")

	viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
	viper.BindPFlag("storage-root", rootCmd.PersistentFlags().Lookup("storage-root"))
}

func initConfig() {
	viper.SetEnvPrefix("LOCALSEARCH")
	viper.AutomaticEnv()
}

func resolveStorageRoot() (string, error) {
	if storageRootFlag != "" {
		return storageRootFlag, nil
	}
	return pathutil.DefaultStorageRoot()
}
