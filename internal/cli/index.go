package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localsearch/localsearch/internal/indexmgr"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the project's code and documentation index",
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storageRoot, err := resolveStorageRoot()
	if err != nil {
		return err
	}

	mgr, err := indexmgr.Open(ctx, storageRoot, projectFlag)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.CreateIndex(ctx, newModelDownloadProgress("Loading embedding model", quietFlag)); err != nil {
		return err
	}

	if !quietFlag {
		status, err := mgr.GetStatus(ctx)
		if err == nil {
			fmt.Printf("Indexed %d code chunks, %d doc chunks (%s)\n",
				status.TotalChunks, status.TotalDocChunks, mgr.IndexDir())
		}
	}
	return nil
}
