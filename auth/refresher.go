package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartRefresher keeps the session credential fresh in the background so
// foreground requests rarely pay the renewal round trip. It checks every
// interval and renews through Token when the credential is near expiry.
// Stops when ctx is cancelled.
func (p *Provider) StartRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if p.State() != StateAuthenticated {
					continue
				}
				if _, err := p.Token(ctx); err != nil {
					// Token already ended the session and notified subscribers.
					p.logger.Warn("Background token renewal failed", zap.Error(err))
				}
			}
		}
	}()
}
