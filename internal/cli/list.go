package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/reporter"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

func newListCmd() *cobra.Command {
	var (
		status  string
		blocked bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks grouped by readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runList(cmd.Context(), status, blocked)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show tasks with this status")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "only show tasks waiting on incomplete dependencies")

	return cmd
}

func runList(ctx context.Context, status string, blocked bool) error {
	filter := reporter.ListFilter{BlockedOnly: blocked}
	if status != "" {
		if !task.Status(status).Valid() {
			return fmt.Errorf("unknown status %q (valid: pending, in-progress, done, completed, blocked, deferred)", status)
		}
		filter.Status = task.Status(status)
	}

	st, _, err := openStore("list")
	if err != nil {
		return err
	}
	defer closeStore(st)

	snap, err := st.FetchAll(ctx)
	if err != nil {
		return err
	}

	reporter.NewTextReporter(os.Stdout, useColor()).PrintList(snap, filter)
	return nil
}
