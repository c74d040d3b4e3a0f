package vision

import (
	"context"
	"sync"
	"sync/atomic"

	apperrors "go-photo-insight/internal/errors"
	"go-photo-insight/internal/logger"
)

// Initializer is implemented by providers that need one-time warm-up (model
// loads, remote collection creation). Providers without it are considered
// ready immediately.
type Initializer interface {
	Init(ctx context.Context) error
}

// ReadinessGate guards the process-wide provider set. Initialization runs
// exactly once and is idempotent to call; analysis requests issued before it
// completes fail fast with a not-ready condition instead of queueing into a
// half-loaded model.
type ReadinessGate struct {
	providers ProviderSet
	once      sync.Once
	ready     atomic.Bool
	initErr   error
}

// NewReadinessGate creates a gate over the given provider set
func NewReadinessGate(providers ProviderSet) *ReadinessGate {
	return &ReadinessGate{providers: providers}
}

// EnsureReady initializes every provider that wants warm-up. Safe to call
// from multiple goroutines; only the first call does work.
func (g *ReadinessGate) EnsureReady(ctx context.Context) error {
	g.once.Do(func() {
		for _, candidate := range []interface{}{
			g.providers.Objects, g.providers.Scenes, g.providers.Faces, g.providers.Text,
		} {
			init, ok := candidate.(Initializer)
			if !ok || init == nil {
				continue
			}
			if err := init.Init(ctx); err != nil {
				g.initErr = apperrors.NewInternalError("provider initialization failed", err)
				logger.WithError(err).Error("Provider initialization failed")
				return
			}
		}
		g.ready.Store(true)
		logger.Info("Provider set initialized")
	})
	return g.initErr
}

// CheckReady reports whether analysis may proceed. Returns a not-ready
// error until EnsureReady has completed successfully.
func (g *ReadinessGate) CheckReady() error {
	if !g.ready.Load() {
		if g.initErr != nil {
			return g.initErr
		}
		return apperrors.NewNotReadyError("analysis providers are not initialized yet")
	}
	return nil
}
