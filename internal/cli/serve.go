package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/localsearch/localsearch/internal/tooling"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tool-calling MCP server on stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	storageRoot, err := resolveStorageRoot()
	if err != nil {
		return err
	}

	host := tooling.NewProjectHost(storageRoot)
	mcpServer := server.NewMCPServer("localsearch", "1.0.0", server.WithToolCapabilities(true))
	tooling.RegisterTools(mcpServer, host)

	if err := server.ServeStdio(mcpServer); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}
