package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localsearch/localsearch/internal/indexmgr"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index counts, timestamps, and embedding model compatibility",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	status, err := mgr.GetStatus(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
