package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localsearch/localsearch/internal/indexmgr"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the project's index",
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storageRoot, err := resolveStorageRoot()
	if err != nil {
		return err
	}

	mgr, err := indexmgr.Open(ctx, storageRoot, projectFlag)
	if err != nil {
		return err
	}
	if err := mgr.DeleteIndex(); err != nil {
		return err
	}
	if !quietFlag {
		fmt.Println("Index deleted")
	}
	return nil
}
