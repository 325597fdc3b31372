package srv

import (
	"context"
	"fmt"
)

// cleanupService releases a client on shutdown and does nothing on start.
type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

// Shutdown runs the cleanup but stops waiting once ctx expires; the cleanup
// goroutine is left to finish on its own.
func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- c.cleanup() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("cleanup abandoned: %w", ctx.Err())
	}
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
