package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/reporter"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

// IssuesError reports that validation found problems. main maps it to exit
// code 2 so scripts can tell a bad graph from an operational failure.
type IssuesError struct {
	Count int
}

func (e *IssuesError) Error() string {
	return fmt.Sprintf("%d dependency issues found", e.Count)
}

func newValidateCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the dependency graph without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resolveSettings(cmd); err != nil {
				return err
			}
			return runValidate(cmd.Context(), format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or sarif")
	cmd.Flags().StringVar(&output, "output", "", "write the report to a file instead of stdout")

	return cmd
}

func runValidate(ctx context.Context, format, output string) error {
	st, _, err := openStore("validate")
	if err != nil {
		return err
	}
	defer closeStore(st)

	snap, err := st.FetchAll(ctx)
	if err != nil {
		return err
	}

	issues := task.ValidateAll(snap)

	switch format {
	case "json":
		env := reporter.NewEnvelope(snap, tasksFile, Version)
		env.Issues = issues
		if output != "" {
			err = reporter.WriteJSONReport(env, output)
		} else {
			err = reporter.EncodeJSON(os.Stdout, env)
		}
	case "sarif":
		if output != "" {
			err = reporter.WriteSARIFReport(issues, tasksFile, output)
		} else {
			err = reporter.EncodeSARIF(os.Stdout, issues, tasksFile)
		}
	case "text":
		w := io.Writer(os.Stdout)
		color := useColor()
		if output != "" {
			f, ferr := os.Create(output)
			if ferr != nil {
				return fmt.Errorf("create report: %w", ferr)
			}
			defer func() { _ = f.Close() }()
			w = f
			color = false
		}
		reporter.NewTextReporter(w, color).PrintIssues(snap, issues)
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, sarif)", format)
	}
	if err != nil {
		return err
	}

	if len(issues) > 0 {
		return &IssuesError{Count: len(issues)}
	}
	return nil
}
