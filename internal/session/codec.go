package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrStorageUnavailable is returned when the session directory cannot be
	// resolved or created.
	ErrStorageUnavailable = errors.New("session storage unavailable")

	// ErrDecodeFailed is returned for a session file that is unreadable or malformed.
	ErrDecodeFailed = errors.New("session decode failed")

	// ErrPersistFailed is returned when encoding or writing a session fails.
	ErrPersistFailed = errors.New("session persist failed")
)

// record is the on-disk form of a Session.
type record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Events    []Event   `json:"events"`
}

// Encode serializes s. The event list is read under the session lock so a
// concurrent Append cannot tear the snapshot.
func Encode(s *Session) ([]byte, error) {
	rec := record{
		ID:        s.ID.String(),
		CreatedAt: s.CreatedAt,
		Events:    s.Events(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s: %w", ErrPersistFailed, s.ID, err)
	}
	return data, nil
}

// Decode rebuilds a Session from the bytes produced by Encode.
func Decode(data []byte) (*Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q: %w", ErrDecodeFailed, rec.ID, err)
	}
	if rec.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing createdAt", ErrDecodeFailed)
	}

	return &Session{
		ID:        id,
		CreatedAt: rec.CreatedAt,
		events:    rec.Events,
	}, nil
}
