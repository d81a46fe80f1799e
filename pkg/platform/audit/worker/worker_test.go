package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "carelink/pkg/platform/audit"
	"carelink/pkg/platform/audit/store/memory"
)

type failingStore struct{ calls int }

func (f *failingStore) Append(context.Context, audit.Event) error {
	f.calls++
	return errors.New("sink down")
}

func TestWorker_DrainsUntilClosed(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{Action: "a"}
	inbox <- audit.Event{Action: "b"}
	close(inbox)

	err := NewWorker(store, inbox, nil).Run(context.Background())
	require.NoError(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorker_SkipsFailedAppends(t *testing.T) {
	store := &failingStore{}
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Action: "a"}
	inbox <- audit.Event{Action: "b"}
	close(inbox)

	require.NoError(t, NewWorker(store, inbox, nil).Run(context.Background()))
	assert.Equal(t, 2, store.calls)
}

func TestWorker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewWorker(memory.NewInMemoryStore(), make(chan audit.Event), nil).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
