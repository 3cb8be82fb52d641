package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweep ends sessions idle for longer than the configured TTL and returns how
// many were removed. Sessions with a turn in flight are kept.
func (s *Service) Sweep(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, st := range s.sessions {
		if !st.turnMu.TryLock() {
			continue
		}
		st.mu.RLock()
		idle := st.session.LastActive.Before(cutoff)
		st.mu.RUnlock()
		st.turnMu.Unlock()

		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if s.idleTTL <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if n := s.Sweep(t); n > 0 {
				log.Info().Int("removed", n).Int("remaining", s.Len()).Msg("idle sessions evicted")
			}
		}
	}
}
