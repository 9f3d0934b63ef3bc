package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/reporter"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

func newBulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Apply dependency edits across id ranges",
		Long:  "Bulk commands expand task and dependency ranges like \"1,3-5\" or \"2.1-2.4\" and apply every task x dependency pair, reporting each outcome.",
	}
	cmd.AddCommand(newBulkAddCmd())
	cmd.AddCommand(newBulkRemoveCmd())
	return cmd
}

func newBulkAddCmd() *cobra.Command {
	var (
		taskSpec string
		depSpec  string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "add --tasks <range> --deps <range>",
		Short: "Add every task x dependency pair in the given ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runBulk(cmd.Context(), taskSpec, depSpec, dryRun, false)
		},
	}

	cmd.Flags().StringVar(&taskSpec, "tasks", "", "task id range, e.g. \"1,3-5\"")
	cmd.Flags().StringVar(&depSpec, "deps", "", "dependency id range, e.g. \"7,9.2\"")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify every pair without persisting")
	_ = cmd.MarkFlagRequired("tasks")
	_ = cmd.MarkFlagRequired("deps")

	return cmd
}

func newBulkRemoveCmd() *cobra.Command {
	var (
		taskSpec string
		depSpec  string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "remove --tasks <range> --deps <range>",
		Short: "Remove every task x dependency pair in the given ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runBulk(cmd.Context(), taskSpec, depSpec, dryRun, true)
		},
	}

	cmd.Flags().StringVar(&taskSpec, "tasks", "", "task id range, e.g. \"1,3-5\"")
	cmd.Flags().StringVar(&depSpec, "deps", "", "dependency id range, e.g. \"7,9.2\"")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify every pair without persisting")
	_ = cmd.MarkFlagRequired("tasks")
	_ = cmd.MarkFlagRequired("deps")

	return cmd
}

func runBulk(ctx context.Context, taskSpec, depSpec string, dryRun, remove bool) error {
	op := "bulk add"
	if remove {
		op = "bulk remove"
	}

	st, lock, err := openStore(op)
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

	var res *task.BulkResult
	if remove {
		res, err = task.BulkRemove(snap, taskSpec, depSpec, dryRun)
	} else {
		res, err = task.BulkAdd(snap, taskSpec, depSpec, dryRun)
	}
	if err != nil {
		return err
	}

	reporter.NewTextReporter(os.Stdout, useColor()).PrintBulkResult(res, dryRun)

	if !dryRun && len(res.Changed) > 0 {
		if err := persist(ctx, st, res.Snapshot, res.Changed); err != nil {
			return err
		}
	}

	if res.Summary.Errors > 0 {
		return fmt.Errorf("%d of %d operations failed", res.Summary.Errors, len(res.Operations))
	}
	return nil
}
