package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

func newDepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Edit single dependency edges",
	}
	cmd.AddCommand(newDepAddCmd())
	cmd.AddCommand(newDepRemoveCmd())
	return cmd
}

func newDepAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <task> <depends-on>",
		Short: "Make one task depend on another",
		Long:  "Add a dependency edge. Ids address tasks (\"7\") or subtasks (\"7.2\"). The edge is rejected if it would repeat, self-reference, or close a cycle.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runDepAdd(cmd.Context(), args[0], args[1])
		},
	}
}

func newDepRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <task> <depends-on>",
		Short: "Drop a dependency edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runDepRemove(cmd.Context(), args[0], args[1])
		},
	}
}

// parseEdge turns command arguments into normalized refs. A bare small id
// given as a subtask's dependency means a sibling, same as in the file.
func parseEdge(ownerArg, targetArg string) (owner, target task.Ref, err error) {
	owner, err = task.ParseRef(ownerArg)
	if err != nil {
		return task.Ref{}, task.Ref{}, fmt.Errorf("task id: %w", err)
	}
	target, err = task.ParseRef(targetArg)
	if err != nil {
		return task.Ref{}, task.Ref{}, fmt.Errorf("dependency id: %w", err)
	}
	if owner.IsSubtask() {
		target = target.Normalize(owner.ID)
	}
	return owner, target, nil
}

func runDepAdd(ctx context.Context, ownerArg, targetArg string) error {
	owner, target, err := parseEdge(ownerArg, targetArg)
	if err != nil {
		return err
	}

	st, lock, err := openStore("dep add")
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	snap, err := st.FetchAll(ctx)
	if err != nil {
		return err
	}

	updated, err := task.AddDependency(snap, owner, target)
	if err != nil {
		if errors.Is(err, task.ErrAlreadyExists) {
			fmt.Fprintf(os.Stdout, "note: %v\n", err)
			return nil
		}
		return err
	}

	snap.SetDependencies(owner, updated)
	if err := persist(ctx, st, snap, []task.Ref{owner}); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "added: %s now depends on %s\n", owner, target)
	return nil
}

func runDepRemove(ctx context.Context, ownerArg, targetArg string) error {
	owner, target, err := parseEdge(ownerArg, targetArg)
	if err != nil {
		return err
	}

	st, lock, err := openStore("dep remove")
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	snap, err := st.FetchAll(ctx)
	if err != nil {
		return err
	}

	updated, removed, err := task.RemoveDependency(snap, owner, target)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(os.Stdout, "note: task %s does not depend on %s\n", owner, target)
		return nil
	}

	snap.SetDependencies(owner, updated)
	if err := persist(ctx, st, snap, []task.Ref{owner}); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "removed: %s no longer depends on %s\n", owner, target)
	return nil
}
