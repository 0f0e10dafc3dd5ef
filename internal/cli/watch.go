package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/localsearch/localsearch/internal/indexmgr"
	"github.com/localsearch/localsearch/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and incrementally update the index on file changes",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageRoot, err := resolveStorageRoot()
	if err != nil {
		return err
	}

	mgr, err := indexmgr.Open(ctx, storageRoot, projectFlag)
	if err != nil {
		return err
	}
	defer mgr.Close()

	w, err := watcher.New(mgr.ProjectRoot(), mgr)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	w.Start(ctx)
	defer w.Stop()

	if !quietFlag {
		fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", mgr.ProjectRoot())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}
