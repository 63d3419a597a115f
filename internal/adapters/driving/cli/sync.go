package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikidex/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one wiki import pass",
	Long: `Runs a single synchronisation pass against the configured wiki.
Unchanged chunks are left alone; new, changed and orphaned chunks are
added, rewritten and pruned respectively.`,
	RunE: runSyncCmd,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	app, err := ensureServices()
	if err != nil {
		return err
	}
	defer app.close()

	ctx := context.Background()
	cmd.Println("Importing wiki...")

	result, err := syncWithProgress(ctx, cmd)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			return errors.New("an import is already running")
		}
		return fmt.Errorf("import failed: %w", err)
	}

	if result.Unchanged() {
		cmd.Println("Index already up to date.")
	} else {
		cmd.Printf("Import complete: %s\n", result)
	}
	return nil
}

// syncWithProgress runs the import while printing page progress.
func syncWithProgress(ctx context.Context, cmd *cobra.Command) (*domain.RunResult, error) {
	type outcome struct {
		result *domain.RunResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := syncRunner.Run(ctx)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-done:
			if lastCount > 0 {
				cmd.Println()
			}
			return out.result, out.err
		case <-ticker.C:
			// Best effort; a status error just skips the update.
			status, err := syncRunner.Status(ctx)
			if err == nil && status != nil && status.PagesProcessed > lastCount {
				cmd.Printf("\rProcessing... %d pages", status.PagesProcessed)
				lastCount = status.PagesProcessed
			}
		}
	}
}
