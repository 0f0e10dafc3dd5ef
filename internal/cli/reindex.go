package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localsearch/localsearch/internal/indexmgr"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the project's index from scratch",
	RunE:  runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
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

	if err := mgr.ReindexProject(ctx, newModelDownloadProgress("Loading embedding model", quietFlag)); err != nil {
		return err
	}

	if !quietFlag {
		status, err := mgr.GetStatus(ctx)
		if err == nil {
			fmt.Printf("Reindexed %d code chunks, %d doc chunks\n", status.TotalChunks, status.TotalDocChunks)
		}
	}
	return nil
}
