package sessionctx

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Expirer is a repo that can sweep out sessions past their expiry.
type Expirer interface {
	DeleteExpired() int
}

var _ Expirer = (*InMemoryRepo)(nil)

// RunJanitor sweeps expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, repo Expirer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := repo.DeleteExpired(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Expired session contexts removed")
			}
		}
	}
}
