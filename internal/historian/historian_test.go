package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/chinchon/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	batches   [][]cache.GameActionRecord
	abandoned []uuid.UUID
	failNext  bool
}

func (f *fakeStore) InsertActions(_ context.Context, recs []cache.GameActionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("db down")
	}
	f.batches = append(f.batches, recs)
	return nil
}

func (f *fakeStore) MarkAbandoned(_ context.Context, gameID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandoned = append(f.abandoned, gameID)
	return nil
}

func (f *fakeStore) inserted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func newTestService(store Store, opts Options) *Service {
	logger, _ := test.NewNullLogger()
	return NewService(nil, store, opts, logger)
}

func record(gameID uuid.UUID, idx int) cache.GameActionRecord {
	return cache.GameActionRecord{GameID: gameID, ActionIndex: idx, ActionType: "player_draw"}
}

func TestAddFlushesFullBatch(t *testing.T) {
	store := &fakeStore{}
	hs := newTestService(store, Options{BatchSize: 3})
	ctx := context.Background()
	gameID := uuid.New()

	hs.Add(ctx, record(gameID, 1))
	hs.Add(ctx, record(gameID, 2))
	assert.Equal(t, 0, store.inserted())
	assert.Equal(t, 2, hs.Pending())

	hs.Add(ctx, record(gameID, 3))
	assert.Equal(t, 3, store.inserted())
	assert.Equal(t, 0, hs.Pending())
	require.Len(t, store.batches, 1)
	assert.Equal(t, 1, store.batches[0][0].ActionIndex)
}

func TestFlushKeepsBatchOnError(t *testing.T) {
	store := &fakeStore{failNext: true}
	hs := newTestService(store, Options{BatchSize: 10})
	ctx := context.Background()
	gameID := uuid.New()

	hs.Add(ctx, record(gameID, 1))
	hs.Flush(ctx)
	assert.Equal(t, 1, hs.Pending())

	hs.Add(ctx, record(gameID, 2))
	hs.Flush(ctx)
	assert.Equal(t, 0, hs.Pending())
	require.Len(t, store.batches, 1)
	assert.Equal(t, []int{1, 2}, []int{store.batches[0][0].ActionIndex, store.batches[0][1].ActionIndex})
}

func TestIngestSkipsInvalidPayload(t *testing.T) {
	store := &fakeStore{}
	logger, hook := test.NewNullLogger()
	hs := NewService(nil, store, Options{}, logger)

	hs.Ingest(context.Background(), "not json")
	assert.Equal(t, 0, hs.Pending())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	data, err := json.Marshal(record(uuid.New(), 4))
	require.NoError(t, err)
	hs.Ingest(context.Background(), string(data))
	assert.Equal(t, 1, hs.Pending())
}

func TestSweepInactiveMarksIdleGames(t *testing.T) {
	store := &fakeStore{}
	hs := newTestService(store, Options{Inactivity: time.Minute})
	ctx := context.Background()

	idle, busy := uuid.New(), uuid.New()
	hs.Add(ctx, record(idle, 1))
	hs.Add(ctx, record(busy, 1))
	hs.lastActivity.Store(idle, time.Now().Add(-2*time.Minute))

	marked := hs.SweepInactive(ctx, time.Now())
	assert.Equal(t, []uuid.UUID{idle}, marked)
	assert.Equal(t, []uuid.UUID{idle}, store.abandoned)

	assert.Empty(t, hs.SweepInactive(ctx, time.Now()), "an abandoned game is no longer tracked")
}

func TestRunDrainsRedisQueue(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	queue := "chinchon_actions_test_" + uuid.NewString()
	defer rdb.Del(context.Background(), queue)

	gameID := uuid.New()
	for i := 1; i <= 3; i++ {
		data, err := json.Marshal(record(gameID, i))
		require.NoError(t, err)
		require.NoError(t, rdb.RPush(ctx, queue, data).Err())
	}

	store := &fakeStore{}
	logger, _ := test.NewNullLogger()
	hs := NewService(rdb, store, Options{
		QueueName:  queue,
		BatchSize:  10,
		FlushDelay: 50 * time.Millisecond,
		PopTimeout: 200 * time.Millisecond,
	}, logger)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		hs.Run(runCtx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.inserted() == 3 }, 3*time.Second, 20*time.Millisecond)
	stop()
	<-done
}
