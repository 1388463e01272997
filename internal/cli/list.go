package cli

import (
	"fmt"
	"strconv"

	"analog/internal/session"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	Long: `List the session of this invocation followed by every session restored
from the storage directory, newest first. Files that cannot be decoded are
skipped.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	store, logger, err := readOnlyApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	var listErr error
	registry := session.NewRegistry(store, session.WithErrorReporter(
		session.ReporterFunc(func(op string, err error) {
			listErr = err
			registryLog := logger.Component("registry")
			registryLog.Error().Str("op", op).Err(err).Msg("Session operation failed")
		}),
	))

	sessions := registry.Sessions()
	if listErr != nil {
		return fmt.Errorf("failed to list sessions: %w", listErr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), sessionTable(sessions, registry.Current()))
	return nil
}

// sessionTable renders one row per session.
func sessionTable(sessions []*session.Session, current *session.Session) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CREATED", "EVENTS", "")

	for _, s := range sessions {
		marker := ""
		if s == current {
			marker = "current"
		}
		t.Row(
			s.ID.String(),
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(s.Len()),
			marker,
		)
	}
	return t.Render()
}
