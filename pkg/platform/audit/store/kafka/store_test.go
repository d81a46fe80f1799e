package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "carelink/pkg/domain"
	audit "carelink/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func TestStore_Append(t *testing.T) {
	producer := &fakeProducer{}
	store := New(producer, "carelink.audit")
	actor := id.ProfileID(uuid.New())

	err := store.Append(context.Background(), audit.Event{
		Category: audit.CategoryConsent,
		ActorID:  actor,
		Action:   string(audit.EventContactAccepted),
		Attrs:    map[string]string{"request_id": "r1"},
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "carelink.audit", rec.Topic)
	assert.Equal(t, actor.String(), string(rec.Key))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, string(audit.EventContactAccepted), decoded.Action)
	assert.Equal(t, actor, decoded.ActorID)
	assert.Equal(t, "r1", decoded.Attrs["request_id"])
}

func TestStore_AppendWithoutActorKeysByAction(t *testing.T) {
	producer := &fakeProducer{}
	require.NoError(t, New(producer, "t").Append(context.Background(), audit.Event{Action: "care_score_recomputed"}))
	assert.Equal(t, "care_score_recomputed", string(producer.records[0].Key))
}

func TestStore_AppendSurfacesBrokerError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("leader not available")}
	err := New(producer, "t").Append(context.Background(), audit.Event{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestNewClient(t *testing.T) {
	t.Run("bounds record delivery", func(t *testing.T) {
		client, err := NewClient([]string{"127.0.0.1:9092"}, "carelink.audit")
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, DeliveryTimeout, client.OptValue(kgo.RecordDeliveryTimeout))
	})

	t.Run("requires brokers", func(t *testing.T) {
		_, err := NewClient(nil, "carelink.audit")
		require.Error(t, err)
	})
}
