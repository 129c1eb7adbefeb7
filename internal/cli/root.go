package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/toedo/internal/config"
	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/poll"
	"github.com/existflow/toedo/internal/todo"
	"github.com/existflow/toedo/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	serverURL  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "toedo",
	Short: "toedo - shared todo lists from the terminal",
	Long: `toedo keeps todo lists in workspaces on a toedo server. Workspaces can be
shared through a public link, optionally protected by a password.

Run 'toedo' without arguments to watch the selected workspace.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}
		if cmd.Flags().Changed("server") {
			cfg.ServerURL = serverURL
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("toedo started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		notices := tui.NewNotices()
		a.notifier = notices

		wm, sess, client, err := a.workspaces(ctx)
		if err != nil {
			return err
		}
		ws := wm.Selected()
		if ws == nil {
			return fmt.Errorf("no workspace selected")
		}

		m := tui.NewModel(tui.Options{
			Workspace: *ws,
			Todos:     todo.NewOwned(client, sess.OwnerID(), notices),
			Scheduler: poll.NewTicker(cfg.PollInterval),
			Notices:   notices,
		})
		return runTUI(m)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("toedo exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// runTUI runs a watch view until the user quits
func runTUI(m tui.Model) error {
	logger.Info("Launching TUI")
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	logger.Info("TUI exited normally")
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "toedo server URL")

	// Add subcommands
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(forgetCmd)
}
