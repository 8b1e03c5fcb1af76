package activity

import (
	"context"
	"log/slog"
	"sync"
)

// Worker persists events from a buffered channel on a single goroutine.
type Worker struct {
	eventCh chan Event
	store   Store
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorker creates a worker with room for bufferSize pending events.
func NewWorker(store Store, bufferSize int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		eventCh: make(chan Event, bufferSize),
		store:   store,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.ctx.Done():
				slog.Info("Draining activity events before shutdown", "remaining_events", len(w.eventCh))
				for len(w.eventCh) > 0 {
					w.save(context.Background(), <-w.eventCh)
				}
				return
			case event := <-w.eventCh:
				w.save(context.Background(), event)
			}
		}
	}()
}

func (w *Worker) save(ctx context.Context, event Event) {
	if err := w.store.SaveEvent(ctx, event); err != nil {
		slog.Error("Failed to save activity event", "event_type", event.Type, "pool_id", event.PoolID, "error", err)
	}
}

// Record queues an event. When the buffer is full the event is dropped.
func (w *Worker) Record(event Event) {
	select {
	case w.eventCh <- event:
	default:
		slog.Warn("Activity channel full, dropping event", "event_type", event.Type, "pool_id", event.PoolID)
	}
}

// Shutdown stops the worker after flushing queued events.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}
