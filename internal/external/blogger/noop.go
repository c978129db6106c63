package blogger

import (
	"context"

	"github.com/wonny/etf-rs/pkg/logger"
)

// NoopPublisher skips posting when credentials are missing (개발 모드)
type NoopPublisher struct {
	logger *logger.Logger
}

// NewNoopPublisher creates a publisher that does nothing
func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: log}
}

// Publish logs the skipped post and returns nil
func (p *NoopPublisher) Publish(_ context.Context, title, _ string) error {
	p.logger.WithField("title", title).Info("Posting skipped (no Blogger credentials)")
	return nil
}
