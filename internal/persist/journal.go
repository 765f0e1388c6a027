package persist

import (
	"context"

	"github.com/l1jgo/edictbridge/internal/core/event"
	"go.uber.org/zap"
)

// maxPending bounds the entries held while the database is unreachable.
const maxPending = 4096

// Writer stores journal batches. *JournalRepo is the production writer.
type Writer interface {
	Write(ctx context.Context, boot int64, entries []Entry) error
}

// Journal buffers session lifecycle and hook failure records from the event
// bus and writes them in batches. Game loop only.
type Journal struct {
	w       Writer
	boot    int64
	pending []Entry
	dropped int
	log     *zap.Logger
}

func NewJournal(w Writer, boot int64, log *zap.Logger) *Journal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Journal{w: w, boot: boot, log: log}
}

// Subscribe records every session and failure event delivered by bus.
func (j *Journal) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(e event.SessionStarted) {
		j.Record(Entry{Kind: EntrySessionStart, Epoch: uint32(e.Epoch), Level: e.Level, Entities: e.Entities, At: e.At})
	})
	event.Subscribe(bus, func(e event.SessionEnded) {
		j.Record(Entry{Kind: EntrySessionEnd, Epoch: uint32(e.Epoch), Reason: e.Reason, At: e.At})
	})
	event.Subscribe(bus, func(e event.HookFailed) {
		j.Record(Entry{Kind: EntryHookFailure, Epoch: uint32(e.Epoch), Event: e.Event, Handler: e.Handler, Message: e.Message, At: e.At})
	})
}

// Record queues one entry, dropping the oldest once the buffer is full.
func (j *Journal) Record(e Entry) {
	if len(j.pending) >= maxPending {
		j.pending = j.pending[1:]
		j.dropped++
	}
	j.pending = append(j.pending, e)
}

// Flush writes everything pending. On failure the batch stays queued for the
// next flush.
func (j *Journal) Flush(ctx context.Context) error {
	if len(j.pending) == 0 {
		return nil
	}
	if j.dropped > 0 {
		j.log.Warn("journal entries dropped", zap.Int("count", j.dropped))
		j.dropped = 0
	}
	batch := j.pending
	if err := j.w.Write(ctx, j.boot, batch); err != nil {
		return err
	}
	j.pending = j.pending[len(batch):]
	if len(j.pending) == 0 {
		j.pending = nil
	}
	j.log.Debug("journal flushed", zap.Int("entries", len(batch)))
	return nil
}

func (j *Journal) Pending() int { return len(j.pending) }
func (j *Journal) Boot() int64  { return j.boot }
