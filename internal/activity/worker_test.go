package activity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	events []Event
}

func (m *memoryStore) SaveEvent(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memoryStore) ListEvents(_ context.Context, poolID string, limit int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].PoolID == poolID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(ExpenseCreated,
		WithPool("pool-1"),
		WithActor("alice"),
		WithData("amount", "12.50"),
	)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, ExpenseCreated, e.Type)
	assert.Equal(t, "pool-1", e.PoolID)
	assert.Equal(t, "alice", e.ActorID)
	assert.Equal(t, "12.50", e.Data["amount"])
	assert.NotZero(t, e.CreatedAt)
}

func TestWorker_FlushesOnShutdown(t *testing.T) {
	store := &memoryStore{}
	w := NewWorker(store, 10)
	w.Start()

	for i := 0; i < 5; i++ {
		w.Record(NewEvent(PoolSettled, WithPool("pool-1")))
	}
	w.Shutdown()

	events, err := store.ListEvents(context.Background(), "pool-1", 100)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

// blockingStore holds the first save until release is closed and refuses
// saves whose context is already done.
type blockingStore struct {
	memoryStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) SaveEvent(ctx context.Context, e Event) error {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.memoryStore.SaveEvent(ctx, e)
}

func TestWorker_SaveInFlightSurvivesShutdown(t *testing.T) {
	store := &blockingStore{started: make(chan struct{}), release: make(chan struct{})}
	w := NewWorker(store, 10)
	w.Start()

	w.Record(NewEvent(ExpenseCreated, WithPool("pool-1")))
	<-store.started
	w.Record(NewEvent(ExpenseDeleted, WithPool("pool-1")))

	w.cancel()
	close(store.release)
	w.Shutdown()

	events, err := store.ListEvents(context.Background(), "pool-1", 100)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorker_DropsWhenFull(t *testing.T) {
	store := &memoryStore{}
	w := NewWorker(store, 2) // not started: nothing drains the buffer

	w.Record(NewEvent(ExpenseCreated, WithPool("p")))
	w.Record(NewEvent(ExpenseCreated, WithPool("p")))
	w.Record(NewEvent(ExpenseCreated, WithPool("p")))

	assert.Len(t, w.eventCh, 2)
}

func TestRecorderFunc(t *testing.T) {
	var got []Event
	r := RecorderFunc(func(e Event) { got = append(got, e) })
	r.Record(NewEvent(MemberAdded))
	Discard.Record(NewEvent(MemberAdded))
	assert.Len(t, got, 1)
}
