package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendIsNewestFirst(t *testing.T) {
	s := New()

	var logged []Event
	for i := 0; i < 5; i++ {
		e := Event{Kind: "message", Message: fmt.Sprintf("e%d", i+1), Time: time.Unix(int64(i), 0).UTC()}
		logged = append(logged, e)
		s.Append(e)
	}

	got := s.Events()
	require.Len(t, got, 5)
	for i := range logged {
		assert.Equal(t, logged[len(logged)-1-i], got[i])
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	s := New()
	s.Append(NewEvent("message", "one"))

	events := s.Events()
	events[0].Message = "mutated"

	assert.Equal(t, "one", s.Events()[0].Message)
}

func TestEmptySessionIsValid(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Events())
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestNewSessionsHaveUniqueIDs(t *testing.T) {
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		s := New()
		require.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestWithMetadataDoesNotAlias(t *testing.T) {
	base := NewEvent("metadata", "build").WithMetadata("os", "linux")
	derived := base.WithMetadata("arch", "arm64")

	assert.Equal(t, map[string]string{"os": "linux"}, base.Metadata)
	assert.Equal(t, map[string]string{"os": "linux", "arch": "arm64"}, derived.Metadata)
}

func TestCompare(t *testing.T) {
	older := newAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := newAt(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	t.Run("newer sorts first", func(t *testing.T) {
		assert.Negative(t, Compare(newer, older))
		assert.Positive(t, Compare(older, newer))
	})

	t.Run("same id compares equal", func(t *testing.T) {
		assert.Zero(t, Compare(older, older))
	})

	t.Run("equal timestamps never compare equal", func(t *testing.T) {
		twin := newAt(older.CreatedAt)
		assert.NotZero(t, Compare(older, twin))
		assert.Equal(t, -Compare(older, twin), Compare(twin, older))
	})
}

func TestSortNewestFirst(t *testing.T) {
	r1 := newAt(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	r2 := newAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r3 := newAt(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	sessions := []*Session{r2, r3, r1}
	SortNewestFirst(sessions)

	assert.Equal(t, []*Session{r3, r1, r2}, sessions)
}

func TestConcurrentAppend(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Append(NewEvent("message", fmt.Sprintf("%d-%d", g, i)))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, s.Len())
}
