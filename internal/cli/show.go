package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"analog/internal/session"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the events of one session",
	Long:  `Print the events of a saved session, newest first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the stored JSON document")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}

	store, logger, err := readOnlyApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	sess, err := store.Load(id)
	if err != nil {
		if session.IsNotExist(err) {
			return fmt.Errorf("session %s not found", id)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		data, err := session.Encode(sess)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	printSession(out, sess)
	return nil
}

func printSession(w io.Writer, sess *session.Session) {
	fmt.Fprintf(w, "Session: %s\n", sess.ID)
	fmt.Fprintf(w, "Created: %s\n", sess.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Events:  %d\n\n", sess.Len())

	for _, e := range sess.Events() {
		fmt.Fprintf(w, "%s  %-20s  %s\n", e.Time.Local().Format("15:04:05.000"), e.Kind, e.Message)

		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		if len(keys) > 0 {
			pairs := make([]string, len(keys))
			for i, k := range keys {
				pairs[i] = k + "=" + e.Metadata[k]
			}
			fmt.Fprintf(w, "%14s%s\n", "", strings.Join(pairs, " "))
		}
	}
}
