package cli

import (
	"analog/internal/session"
	"analog/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile    string
	storageDir string
	logLevel   string
)

// rootCmd browses recorded sessions when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "analog",
	Short: "analog - session event log recorder and browser",
	Long: `analog records timestamped events into a per-run session, persists each
session as its own file, and lets you browse the live session alongside the
ones saved by earlier runs.`,
	Version:      version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runBrowse,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./analog.yaml or ~/.config/analog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storageDir, "storage-dir", "", "directory holding session files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	// Console logging would draw over the alternate screen
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	watcher, err := session.NewWatcher(a.store)
	if err != nil {
		a.log.Warn().Err(err).Msg("Session directory not watched; relying on periodic refresh")
		watcher = nil
	} else {
		watcher.Start()
		defer func() { _ = watcher.Stop() }()
	}

	a.registry.Log(session.NewEvent("browse.start", "Opened session browser"))

	model := tui.NewModel(tui.Options{
		Registry: a.registry,
		Config:   a.cfg,
		Watcher:  watcher,
	})
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	// Subscribed after the registry, so the session is saved before quitting
	sub := a.notifier.Subscribe(p.Quit)
	defer sub.Cancel()

	if _, err := p.Run(); err != nil {
		return err
	}

	a.registry.Log(session.NewEvent("browse.stop", "Closed session browser"))
	return nil
}
