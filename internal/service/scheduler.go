package service

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"omezka-shop-api/internal/cache"
	"omezka-shop-api/internal/model"
)

// maxEntryStock caps snapshot stock under repeated merges. Without it an
// item that keeps getting resampled in the same hour accumulates without
// bound.
const maxEntryStock = 99

// RotationSource produces candidate snapshots.
type RotationSource interface {
	Compute(ctx context.Context) ([]model.ShopEntry, error)
}

// SchedulerConfig holds configuration for the rotation scheduler.
type SchedulerConfig struct {
	// MinInterval/MaxInterval bound the jittered sleep between cycles.
	// Defaults: 15s / 40s.
	MinInterval time.Duration
	MaxInterval time.Duration

	// CycleTimeout bounds one rotation cycle. Default: 30s.
	CycleTimeout time.Duration
}

// RotationScheduler drives the rotation loop. Once per wall-clock hour a
// cycle fully replaces the public snapshot; within the same hour cycles
// merge into it instead, adding stock for items already on display.
type RotationScheduler struct {
	engine   RotationSource
	cache    cache.ShopCache
	notifier cache.Notifier
	config   SchedulerConfig

	now func() time.Time
	rng *rand.Rand

	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	stopped   bool
	mu        sync.Mutex
}

// NewRotationScheduler creates a scheduler. notifier may be nil.
func NewRotationScheduler(engine RotationSource, shopCache cache.ShopCache, notifier cache.Notifier, config SchedulerConfig) *RotationScheduler {
	if config.MinInterval <= 0 {
		config.MinInterval = 15 * time.Second
	}
	if config.MaxInterval < config.MinInterval {
		config.MaxInterval = 40 * time.Second
		if config.MaxInterval < config.MinInterval {
			config.MaxInterval = config.MinInterval
		}
	}
	if config.CycleTimeout <= 0 {
		config.CycleTimeout = 30 * time.Second
	}

	return &RotationScheduler{
		engine:   engine,
		cache:    shopCache,
		notifier: notifier,
		config:   config,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the rotation loop. A scheduler that has been stopped stays
// stopped; Start after Stop is a no-op.
func (s *RotationScheduler) Start() {
	s.mu.Lock()
	if s.isRunning || s.stopped {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	log.Printf("[RotationScheduler] Started - interval: %v..%v",
		s.config.MinInterval, s.config.MaxInterval)
	go s.run()
}

// run sleeps a jittered interval, runs one cycle and repeats. A failed
// cycle is logged and skipped; the next tick is the retry.
func (s *RotationScheduler) run() {
	for {
		timer := time.NewTimer(s.jitter())
		select {
		case <-timer.C:
			if err := s.RunCycle(); err != nil {
				log.Printf("[RotationScheduler] Cycle failed: %v", err)
			}
		case <-s.stopCh:
			timer.Stop()
			log.Printf("[RotationScheduler] Stopped")
			return
		}
	}
}

// jitter picks a uniform sleep in [MinInterval, MaxInterval]. The spread
// keeps separate deployments from rotating in lockstep.
func (s *RotationScheduler) jitter() time.Duration {
	spread := s.config.MaxInterval - s.config.MinInterval
	if spread <= 0 {
		return s.config.MinInterval
	}
	s.mu.Lock()
	d := time.Duration(s.rng.Int63n(int64(spread) + 1))
	s.mu.Unlock()
	return s.config.MinInterval + d
}

// RunCycle executes one rotation: compute a candidate, then either replace
// the snapshot (first cycle of a new hour) or merge into it.
func (s *RotationScheduler) RunCycle() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.CycleTimeout)
	defer cancel()

	currentHour := s.now().Hour()

	lastReset, haveReset, err := s.cache.LastResetHour(ctx)
	if err != nil {
		return err
	}

	candidate, err := s.engine.Compute(ctx)
	if err != nil {
		return err
	}

	if !haveReset || lastReset != currentHour {
		log.Printf("[RotationScheduler] New hour (%02d) - full shop reset, %d items", currentHour, len(candidate))
		if err := s.cache.SetSnapshot(ctx, candidate); err != nil {
			return err
		}
		if err := s.cache.SetLastResetHour(ctx, currentHour); err != nil {
			return err
		}
		s.notify(ctx, candidate)
		return nil
	}

	existing, err := s.cache.GetSnapshot(ctx)
	if err != nil && err != cache.ErrCacheMiss {
		return err
	}

	merged := mergeSnapshots(existing, candidate)
	log.Printf("[RotationScheduler] Restock merge - %d items on display", len(merged))
	if err := s.cache.SetSnapshot(ctx, merged); err != nil {
		return err
	}
	s.notify(ctx, merged)
	return nil
}

// mergeSnapshots folds a candidate into the existing snapshot by item id:
// stock adds up for items already on display, new items are appended.
// Existing display order is preserved.
func mergeSnapshots(existing, candidate []model.ShopEntry) []model.ShopEntry {
	merged := make([]model.ShopEntry, len(existing))
	copy(merged, existing)

	index := make(map[int64]int, len(merged))
	for i, e := range merged {
		index[e.ID] = i
	}

	for _, c := range candidate {
		if i, ok := index[c.ID]; ok {
			stock := merged[i].Stock + c.Stock
			if stock > maxEntryStock {
				stock = maxEntryStock
			}
			merged[i].Stock = stock
			continue
		}
		index[c.ID] = len(merged)
		merged = append(merged, c)
	}
	return merged
}

func (s *RotationScheduler) notify(ctx context.Context, entries []model.ShopEntry) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishShopUpdate(ctx, entries); err != nil {
		log.Printf("[RotationScheduler] Fan-out failed: %v", err)
	}
}

// IsRunning reports whether the loop has been started and not stopped.
func (s *RotationScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Stop terminates the rotation loop.
func (s *RotationScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		close(s.stopCh)
		s.isRunning = false
		s.stopped = true
	})
}
