package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/config"
)

// Version, Commit and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configFile string
	tasksFile  string
	storeKind  string
	dbPath     string
	noColor    bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskdeps",
		Short: "Dependency graph tooling for task files",
		Long:  "taskdeps validates, repairs and edits the dependency graph of a tasks.json work plan, and picks the next workable task.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "path to config file")
	root.PersistentFlags().StringVarP(&tasksFile, "file", "f", "tasks.json", "path to tasks JSON file")
	root.PersistentFlags().StringVar(&storeKind, "store", config.StoreJSON, "task store backend: json or sqlite")
	root.PersistentFlags().StringVar(&dbPath, "db", "tasks.db", "path to sqlite database (store=sqlite)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newDepCmd())
	root.AddCommand(newBulkCmd())
	root.AddCommand(newFixCmd())
	root.AddCommand(newNextCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// resolveSettings loads the config file, then fills in any store globals the
// user did not set explicitly on the command line.
func resolveSettings(cmd *cobra.Command) (*config.Settings, error) {
	cfg, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if !flags.Changed("file") && cfg.TasksFile != "" {
		tasksFile = cfg.TasksFile
	}
	if !flags.Changed("store") && cfg.Store != "" {
		storeKind = cfg.Store
	}
	if !flags.Changed("db") && cfg.DBPath != "" {
		dbPath = cfg.DBPath
	}
	if !flags.Changed("no-color") && cfg.NoColor {
		noColor = true
	}
	return cfg, nil
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func useColor() bool {
	return isTerminal() && !noColor
}
