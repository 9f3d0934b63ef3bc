package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/config"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		plain    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Revalidate continuously as the tasks file changes",
		Long:  "Watch re-runs validation whenever the backing file changes. With a terminal it shows a live view; --plain (or a redirected stdout) switches to line-based output.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") && cfg.WatchInterval > 0 {
				interval = cfg.WatchInterval
			}
			return runWatch(cmd.Context(), interval, cfg.WatchDebounce, plain)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "poll interval when file notifications are unavailable")
	cmd.Flags().BoolVar(&plain, "plain", false, "line-based output instead of the live view")

	return cmd
}

func runWatch(ctx context.Context, interval, debounce time.Duration, plain bool) error {
	st, _, err := openStore("watch")
	if err != nil {
		return err
	}
	defer closeStore(st)

	// The sqlite backend has no tasks file; watch the database instead.
	watchPath := tasksFile
	if storeKind == config.StoreSQLite {
		watchPath = dbPath
	}

	check := func() watch.CheckResult {
		snap, err := st.FetchAll(ctx)
		if err != nil {
			return watch.CheckResult{Err: err, At: time.Now()}
		}
		return watch.CheckResult{Snap: snap, Issues: task.ValidateAll(snap), At: time.Now()}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := watch.New(watchPath, debounce, interval)
	go func() {
		if err := w.Run(ctx); err != nil {
			slog.Error("watcher stopped", "error", err)
		}
	}()

	if plain || !isTerminal() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		go func() {
			<-sigCh
			cancel()
		}()
		return watch.NewPrinter(os.Stdout, useColor(), watchPath).Run(ctx, check, w.Events())
	}

	model := watch.NewModel(watchPath, check, w.Events())
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("watch display: %w", err)
	}
	return nil
}
