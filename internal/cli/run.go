package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"analog/internal/observability"
	"analog/internal/session"

	"github.com/spf13/cobra"
)

// Event kinds recorded by "analog run".
const (
	KindProcessStart = "process.start"
	KindProcessExit  = "process.exit"
	KindStdout       = "stdout"
	KindStderr       = "stderr"
)

const (
	maxLineSize = 1024 * 1024
	killDelay   = 5 * time.Second
)

var metricsAddr string

// ExitError carries a child's non-zero exit status out of "analog run".
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

var runCmd = &cobra.Command{
	Use:   "run -- <command> [args...]",
	Short: "Run a command and record its output as a session",
	Long: `Run a command, recording its start, every line it writes to stdout and
stderr, and its exit status as events in a new session. The session is saved
whenever analog receives SIGHUP, SIGINT or SIGTERM, and again when the command
exits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running (overrides config)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := a.cfg.MetricsAddr
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr != "" {
		serveCtx, cancelServe := context.WithCancel(ctx)
		defer cancelServe()
		go func() {
			if err := observability.Serve(serveCtx, addr, a.metrics); err != nil {
				a.log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
			}
		}()
		a.log.Info().Str("addr", addr).Msg("Serving metrics")
	}

	code, err := record(ctx, a.registry, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// Persist the finished run before reporting its status
	a.notifier.Notify()
	a.log.Info().
		Str("session", a.registry.Current().ID.String()).
		Int("exit_code", code).
		Msg("Command finished")

	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// record runs args as a child process, logging its lifecycle and output into
// registry while copying the output to stdout and stderr. It returns the
// child's exit code; the error is non-nil only when the child could not be
// started or waited for.
func record(ctx context.Context, registry *session.Registry, args []string, stdout, stderr io.Writer) (int, error) {
	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdin = os.Stdin
	c.Cancel = func() error { return c.Process.Signal(syscall.SIGTERM) }
	c.WaitDelay = killDelay

	outPipe, err := c.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to attach stdout: %w", err)
	}
	errPipe, err := c.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to attach stderr: %w", err)
	}

	commandLine := strings.Join(args, " ")
	if err := c.Start(); err != nil {
		registry.Log(session.NewEvent(KindProcessExit, "Failed to start: "+err.Error()).
			WithMetadata("command", commandLine))
		return 0, fmt.Errorf("failed to start %s: %w", args[0], err)
	}

	started := time.Now()
	start := session.NewEvent(KindProcessStart, commandLine).
		WithMetadata("pid", strconv.Itoa(c.Process.Pid))
	if dir, err := os.Getwd(); err == nil {
		start = start.WithMetadata("dir", dir)
	}
	registry.Log(start)

	// Both pipes must be drained before Wait
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		copyLines(registry, KindStdout, outPipe, stdout)
	}()
	go func() {
		defer wg.Done()
		copyLines(registry, KindStderr, errPipe, stderr)
	}()
	wg.Wait()

	waitErr := c.Wait()

	code := 0
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		code = exitErr.ExitCode()
	default:
		return 0, fmt.Errorf("failed waiting for %s: %w", args[0], waitErr)
	}

	var signaled string
	if ws, ok := c.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		// Shell convention for a child killed by a signal
		code = 128 + int(ws.Signal())
		signaled = ws.Signal().String()
	}

	exit := session.NewEvent(KindProcessExit, fmt.Sprintf("Exited with status %d", code)).
		WithMetadata("code", strconv.Itoa(code)).
		WithMetadata("pid", strconv.Itoa(c.Process.Pid)).
		WithMetadata("duration", time.Since(started).Round(time.Millisecond).String())
	if signaled != "" {
		exit = exit.WithMetadata("signal", signaled)
	}
	registry.Log(exit)

	return code, nil
}

// copyLines logs each line read from r as an event and echoes it to w.
func copyLines(registry *session.Registry, kind string, r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		registry.Log(session.NewEvent(kind, line))
		fmt.Fprintln(w, line)
	}
	if err := scanner.Err(); err != nil {
		registry.Log(session.NewEvent("error", kind+": "+err.Error()))
		// Keep the child from blocking on a full pipe
		_, _ = io.Copy(w, r)
	}
}
