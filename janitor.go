package main

import "time"

// The janitor sweeps abandoned dialogues out of the in-memory session store.
// Travelers regularly walk away mid-dialogue; without the sweep those records
// accumulate for the lifetime of the process. Redis-backed deployments rely
// on key TTLs instead, so the janitor only runs when the memory store is in
// use.

type Janitor struct {
	cfg      *apiConfig
	sweepC   <-chan time.Time
	stop     chan struct{}
	ticker   *time.Ticker
	sweepJob func()
}

func NewJanitor(cfg *apiConfig, interval time.Duration) *Janitor {
	ticker := time.NewTicker(interval)
	j := &Janitor{
		cfg:    cfg,
		sweepC: ticker.C,
		stop:   make(chan struct{}),
		ticker: ticker,
	}
	j.sweepJob = j.runSweep
	return j
}

func (j *Janitor) Start() {
	go func() {
		for {
			select {
			case <-j.sweepC:
				j.sweepJob()
			case <-j.stop:
				j.ticker.Stop()
				return
			}
		}
	}()
}

func (j *Janitor) Stop() {
	close(j.stop)
}

// runSweep drops every session idle for longer than the configured TTL.
func (j *Janitor) runSweep() {
	if j.cfg.memSessions == nil {
		return
	}
	purged := j.cfg.memSessions.PurgeOlderThan(j.cfg.sessionTTL)
	if purged > 0 {
		j.cfg.logger.Info("janitor purged stale sessions", "count", purged)
	}
}
