package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the current or last import",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := ensureServices()
		if err != nil {
			return err
		}
		defer app.close()

		status, err := syncRunner.Status(cmd.Context())
		if err != nil {
			return err
		}

		if status.RunID == "" {
			cmd.Println("No import has run yet.")
			return nil
		}
		state := "finished"
		if status.Running {
			state = "running"
		}
		cmd.Printf("Run %s: %s, %d pages processed\n", status.RunID, state, status.PagesProcessed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
