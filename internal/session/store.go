package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"analog/internal/observability"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store persists sessions as one file per session inside a single directory.
// The directory listing is the index; there is no manifest.
type Store struct {
	dir     string
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for skipped files and saves.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records saves and skipped files on m.
func WithMetrics(m *observability.Metrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a store rooted at dir. The directory is created lazily by
// the first operation that needs it.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:    dir,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the storage directory, creating it and any missing parents.
func (s *Store) Dir() (string, error) {
	if s.dir == "" {
		return "", fmt.Errorf("%w: no directory configured", ErrStorageUnavailable)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return s.dir, nil
}

// Path returns the file path for the session with the given id.
func (s *Store) Path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String())
}

// List decodes every session file in the directory. Files that fail to
// decode are skipped individually; the result is unsorted.
func (s *Store) List() ([]*Session, error) {
	dir, err := s.Dir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	sessions := make([]*Session, 0, len(entries))
	for _, entry := range entries {
		if !isSessionFile(entry.Name()) || !entry.Type().IsRegular() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		sess, err := s.load(path)
		if err != nil {
			s.metrics.RecordSkipped()
			s.logger.Debug().
				Str("file", path).
				Err(err).
				Msg("Skipping unreadable session file")
			continue
		}
		sessions = append(sessions, sess)
	}

	s.metrics.SetRestored(len(sessions))
	return sessions, nil
}

// Load reads a single persisted session.
func (s *Store) Load(id uuid.UUID) (*Session, error) {
	dir, err := s.Dir()
	if err != nil {
		return nil, err
	}
	return s.load(filepath.Join(dir, id.String()))
}

func (s *Store) load(path string) (*Session, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the storage directory
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return Decode(data)
}

// Save writes sess to the file named by its id, replacing any previous
// snapshot. The data goes to a hidden temp file first and is renamed into
// place, so readers see either the old or the new snapshot.
func (s *Store) Save(sess *Session) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordSave(time.Since(start), err)
	}()

	dir, err := s.Dir()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	data, err := Encode(sess)
	if err != nil {
		return err
	}

	name := sess.ID.String()
	tmp, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrPersistFailed, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %w", ErrPersistFailed, name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: sync %s: %w", ErrPersistFailed, name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %w", ErrPersistFailed, name, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: replace %s: %w", ErrPersistFailed, name, err)
	}

	s.logger.Debug().
		Str("session", name).
		Int("events", sess.Len()).
		Msg("Session saved")

	return nil
}

// isSessionFile reports whether name could hold a session. Hidden names are
// reserved for in-flight temp files.
func isSessionFile(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".")
}

// IsNotExist reports whether err means the session file was not found.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
