// Package historian drains the game action queue from Redis and persists it in batches.
package historian

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/chinchon/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Store is where flushed batches end up. database.ActionStore implements it.
type Store interface {
	InsertActions(ctx context.Context, recs []cache.GameActionRecord) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) error
}

// Options tune batching and the abandoned-game sweep.
type Options struct {
	QueueName  string
	BatchSize  int
	FlushDelay time.Duration
	Inactivity time.Duration
	// SweepEvery is how often idle games are checked. Defaults to one minute.
	SweepEvery time.Duration
	PopTimeout time.Duration
}

// Service captures game actions and marks games abandoned after a period of inactivity.
type Service struct {
	rdb    *redis.Client
	store  Store
	opts   Options
	logger *logrus.Logger

	lastActivity sync.Map // uuid.UUID -> time.Time

	batchMu sync.Mutex
	batch   []cache.GameActionRecord
}

// NewService fills in defaults for zero options.
func NewService(rdb *redis.Client, store Store, opts Options, logger *logrus.Logger) *Service {
	if opts.QueueName == "" {
		opts.QueueName = cache.DefaultQueueName
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = 10 * time.Minute
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = time.Minute
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		rdb:    rdb,
		store:  store,
		opts:   opts,
		logger: logger,
		batch:  make([]cache.GameActionRecord, 0, opts.BatchSize),
	}
}

// Run blocks until ctx is cancelled. Whatever is still batched is flushed on the way out.
func (hs *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); hs.readRedisLoop(ctx) }()
	go func() { defer wg.Done(); hs.flushLoop(ctx) }()
	go func() { defer wg.Done(); hs.inactivityLoop(ctx) }()

	hs.logger.Infof("historian started on queue %q", hs.opts.QueueName)
	<-ctx.Done()
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hs.Flush(flushCtx)
	hs.logger.Info("historian shut down")
}

func (hs *Service) readRedisLoop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := hs.rdb.BLPop(ctx, hs.opts.PopTimeout, hs.opts.QueueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			hs.logger.Errorf("BLPop: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if len(res) < 2 {
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		hs.Ingest(ctx, res[1])
	}
}

// Ingest decodes one queue payload and adds it to the batch.
func (hs *Service) Ingest(ctx context.Context, payload string) {
	rec, err := cache.DecodeGameAction(payload)
	if err != nil {
		hs.logger.Warnf("invalid action record: %v", err)
		return
	}
	hs.Add(ctx, rec)
}

// Add records activity for the record's game and flushes once the batch is full.
func (hs *Service) Add(ctx context.Context, rec cache.GameActionRecord) {
	hs.lastActivity.Store(rec.GameID, time.Now())

	hs.batchMu.Lock()
	hs.batch = append(hs.batch, rec)
	full := len(hs.batch) >= hs.opts.BatchSize
	hs.batchMu.Unlock()

	if full {
		hs.Flush(ctx)
	}
}

func (hs *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.Flush(ctx)
		}
	}
}

// Flush writes the pending batch in one store call. A failed batch is put back in front
// of anything queued meanwhile.
func (hs *Service) Flush(ctx context.Context) {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	batchCopy := make([]cache.GameActionRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	if err := hs.store.InsertActions(ctx, batchCopy); err != nil {
		hs.logger.Errorf("flush %d actions: %v", len(batchCopy), err)
		hs.batchMu.Lock()
		hs.batch = append(batchCopy, hs.batch...)
		hs.batchMu.Unlock()
		return
	}
	hs.logger.Debugf("flushed %d actions", len(batchCopy))
}

// Pending is the number of batched records not yet flushed.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

func (hs *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			hs.SweepInactive(ctx, now)
		}
	}
}

// SweepInactive marks every game idle for longer than the inactivity threshold as
// abandoned and stops tracking it. It returns the games it marked.
func (hs *Service) SweepInactive(ctx context.Context, now time.Time) []uuid.UUID {
	var marked []uuid.UUID
	hs.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= hs.opts.Inactivity {
			return true
		}
		if err := hs.store.MarkAbandoned(ctx, gameID); err != nil {
			hs.logger.Errorf("%v", err)
			return true
		}
		hs.logger.Infof("marked game %v abandoned due to inactivity", gameID)
		hs.lastActivity.Delete(gameID)
		marked = append(marked, gameID)
		return true
	})
	return marked
}
