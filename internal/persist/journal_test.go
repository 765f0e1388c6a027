package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/l1jgo/edictbridge/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	batches [][]Entry
	boot    int64
	err     error
}

func (w *fakeWriter) Write(_ context.Context, boot int64, entries []Entry) error {
	if w.err != nil {
		return w.err
	}
	w.boot = boot
	w.batches = append(w.batches, append([]Entry(nil), entries...))
	return nil
}

func TestJournal_RecordsBusEvents(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 1700000000, nil)
	bus := event.NewBus()
	j.Subscribe(bus)

	now := time.Unix(1700000100, 0)
	event.Emit(bus, event.SessionStarted{Epoch: 1, Level: "start", Entities: 6, At: now})
	event.Emit(bus, event.HookFailed{Epoch: 1, Event: "entitythink", Handler: 2, Message: "boom", At: now})
	event.Emit(bus, event.SessionEnded{Epoch: 1, Reason: "changelevel", At: now})
	bus.SwapBuffers()
	bus.DispatchAll()
	require.Equal(t, 3, j.Pending())

	require.NoError(t, j.Flush(context.Background()))
	assert.Equal(t, 0, j.Pending())
	require.Len(t, w.batches, 1)
	assert.Equal(t, int64(1700000000), w.boot)

	got := w.batches[0]
	assert.Equal(t, []EntryKind{EntrySessionStart, EntryHookFailure, EntrySessionEnd},
		[]EntryKind{got[0].Kind, got[1].Kind, got[2].Kind})
	assert.Equal(t, "start", got[0].Level)
	assert.Equal(t, 6, got[0].Entities)
	assert.Equal(t, "entitythink", got[1].Event)
	assert.Equal(t, 2, got[1].Handler)
	assert.Equal(t, "changelevel", got[2].Reason)
}

func TestJournal_FlushEmpty(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 1, nil)
	require.NoError(t, j.Flush(context.Background()))
	assert.Empty(t, w.batches)
}

func TestJournal_FailedFlushRetries(t *testing.T) {
	w := &fakeWriter{err: errors.New("connection refused")}
	j := NewJournal(w, 1, nil)
	j.Record(Entry{Kind: EntrySessionStart, Epoch: 1})

	assert.ErrorContains(t, j.Flush(context.Background()), "connection refused")
	assert.Equal(t, 1, j.Pending())

	w.err = nil
	j.Record(Entry{Kind: EntrySessionEnd, Epoch: 1})
	require.NoError(t, j.Flush(context.Background()))
	require.Len(t, w.batches, 1)
	assert.Len(t, w.batches[0], 2)
}

func TestJournal_DropsOldest(t *testing.T) {
	j := NewJournal(&fakeWriter{}, 1, nil)
	for i := 0; i < maxPending+3; i++ {
		j.Record(Entry{Kind: EntryHookFailure, Handler: i})
	}
	assert.Equal(t, maxPending, j.Pending())
	assert.Equal(t, 3, j.pending[0].Handler)
	assert.Equal(t, 3, j.dropped)
}

func TestEntryKind_String(t *testing.T) {
	assert.Equal(t, "session_start", EntrySessionStart.String())
	assert.Equal(t, "hook_failure", EntryHookFailure.String())
	assert.Equal(t, "unknown", EntryKind(9).String())
}
