package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/reporter"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

func newFixCmd() *cobra.Command {
	var (
		dryRun bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Repair the dependency graph automatically",
		Long:  "Fix removes duplicate, dangling and self references, breaks subtask cycles, and keeps every task with subtasks startable. Task-level cycles are reported but left alone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runFix(cmd.Context(), dryRun, format)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report repairs without persisting")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")

	return cmd
}

func runFix(ctx context.Context, dryRun bool, format string) error {
	st, lock, err := openStore("fix")
	if err != nil {
		return err
	}
	defer closeStore(st)

	if !dryRun {
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer lock.Release()
	}

	snap, err := st.FetchAll(ctx)
	if err != nil {
		return err
	}

	res := task.Fix(snap)

	switch format {
	case "json":
		env := reporter.NewEnvelope(snap, tasksFile, Version)
		env.Fix = res
		if err := reporter.EncodeJSON(os.Stdout, env); err != nil {
			return err
		}
	case "text":
		reporter.NewTextReporter(os.Stdout, useColor()).PrintFixResult(res, dryRun)
	default:
		return fmt.Errorf("unknown format %q (valid: text, json)", format)
	}

	if dryRun || len(res.Changes) == 0 {
		return nil
	}

	owners := make([]task.Ref, len(res.Changes))
	for i, ch := range res.Changes {
		owners[i] = ch.Owner
	}
	return persist(ctx, st, res.Snapshot, owners)
}
