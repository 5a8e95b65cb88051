package service

import (
	"context"
	"log"
	"sync"
	"time"

	"omezka-shop-api/internal/repository"
)

// AuctionSweeperConfig holds configuration for the lot expiry sweeper.
type AuctionSweeperConfig struct {
	// SweepInterval is how often expired lots are closed. Default: 5m.
	SweepInterval time.Duration
}

// AuctionSweeper periodically closes expired auction lots and returns the
// escrowed items to their owners. Fixed-rate, unlike the jittered rotation
// loop: lot expiry has a hard deadline semantic.
type AuctionSweeper struct {
	store    repository.Store
	config   AuctionSweeperConfig
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	running  bool
	stopped  bool
}

// NewAuctionSweeper creates a sweeper.
func NewAuctionSweeper(store repository.Store, config AuctionSweeperConfig) *AuctionSweeper {
	if config.SweepInterval <= 0 {
		config.SweepInterval = 5 * time.Minute
	}
	return &AuctionSweeper{
		store:  store,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the sweep loop. Start after Stop is a no-op.
func (s *AuctionSweeper) Start() {
	s.mu.Lock()
	if s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.config.SweepInterval)
	s.mu.Unlock()

	log.Printf("[AuctionSweeper] Started - interval: %v", s.config.SweepInterval)
	go s.run()
}

func (s *AuctionSweeper) run() {
	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stopCh:
			log.Printf("[AuctionSweeper] Stopped")
			return
		}
	}
}

func (s *AuctionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	closed, err := s.store.ExpireOverdueLots(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("[AuctionSweeper] Sweep failed: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("[AuctionSweeper] Closed %d expired lots", closed)
	}
}

// Stop terminates the sweep loop.
func (s *AuctionSweeper) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.running = false
		s.stopped = true
	})
}
