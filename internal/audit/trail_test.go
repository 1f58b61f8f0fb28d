// Copyright (c) 2026 Identra. All rights reserved.

package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore collects appended events and can be told to fail.
type memoryStore struct {
	mu     sync.Mutex
	events []*Event
	fail   bool
}

func (s *memoryStore) Append(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("storage down")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *memoryStore) List(context.Context, Filter, int, int) ([]*Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events, len(s.events), nil
}

func (s *memoryStore) GetEvent(context.Context, int64) (*Event, error) { return nil, nil }

func (s *memoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*Event
	var removed int64
	for _, event := range s.events {
		if event.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, event)
	}
	s.events = kept
	return removed, nil
}

func (s *memoryStore) Statistics(context.Context, *time.Time, *time.Time) (*Statistics, error) {
	return &Statistics{}, nil
}

func (s *memoryStore) Trends(context.Context, int) ([]DailyCount, error) { return nil, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestTrail_Record verifies that events are persisted asynchronously with the
recorder's timestamp.
*/
func TestTrail_Record(t *testing.T) {
	store := &memoryStore{}
	trail := NewTrail(store, discardLogger(), nil)

	recordedAt := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	trail.now = func() time.Time { return recordedAt }

	userID := int64(7)
	trail.Record(context.Background(), Event{
		Action:      ActionLogin,
		Module:      "AUTH",
		Description: "User logged in",
		ActorID:     &userID,
		Status:      StatusSuccess,
	})
	trail.Close()

	require.Len(t, store.events, 1)
	assert.Equal(t, ActionLogin, store.events[0].Action)
	assert.Equal(t, recordedAt, store.events[0].CreatedAt)
}

/*
TestTrail_Record_SwallowsStoreFailure verifies the fire-and-forget contract:
a failing store never propagates to the caller.
*/
func TestTrail_Record_SwallowsStoreFailure(t *testing.T) {
	store := &memoryStore{fail: true}
	trail := NewTrail(store, discardLogger(), nil)

	assert.NotPanics(t, func() {
		trail.Record(context.Background(), Event{Action: ActionLogin, Module: "AUTH", Status: StatusFailed})
		trail.Close()
	})
	assert.Empty(t, store.events)
}

/*
TestTrail_Record_SurvivesCanceledRequest verifies that an already-canceled
request context does not abort the audit write.
*/
func TestTrail_Record_SurvivesCanceledRequest(t *testing.T) {
	store := &memoryStore{}
	trail := NewTrail(store, discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trail.Record(ctx, Event{Action: ActionRegister, Module: "AUTH", Status: StatusSuccess})
	trail.Close()

	assert.Len(t, store.events, 1)
}

/*
TestService_Cleanup verifies that only events strictly older than the
retention cutoff are removed and that the removed count is reported. The
clock is frozen so the cutoff boundary is exact.
*/
func TestService_Cleanup(t *testing.T) {
	store := &memoryStore{}
	service := NewService(store, discardLogger())

	frozen := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return frozen }

	retention := 90 * 24 * time.Hour
	cutoff := frozen.Add(-retention)
	store.events = []*Event{
		{ID: 1, CreatedAt: cutoff.Add(-10 * 24 * time.Hour)},
		{ID: 2, CreatedAt: cutoff.Add(-time.Second)},
		{ID: 3, CreatedAt: cutoff}, // exactly at the cutoff stays
		{ID: 4, CreatedAt: frozen.Add(-time.Hour)},
	}

	removed, err := service.Cleanup(context.Background(), retention)
	require.NoError(t, err)

	assert.Equal(t, int64(2), removed)
	require.Len(t, store.events, 2)
	assert.Equal(t, int64(3), store.events[0].ID)
	assert.Equal(t, int64(4), store.events[1].ID)
}
