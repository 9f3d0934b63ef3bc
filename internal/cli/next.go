package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/reporter"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next task ready to start",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runNext(cmd.Context())
		},
	}
}

func runNext(ctx context.Context) error {
	st, _, err := openStore("next")
	if err != nil {
		return err
	}
	defer closeStore(st)

	snap, err := st.FetchAll(ctx)
	if err != nil {
		return err
	}

	reporter.NewTextReporter(os.Stdout, useColor()).PrintNext(task.FindNext(snap))
	return nil
}
