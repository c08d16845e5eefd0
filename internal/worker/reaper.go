package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/events"
)

// TokenPurger drops tokens that expired before cutoff.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// OrphanReclaimer deletes groups whose tenant no longer exists.
type OrphanReclaimer interface {
	ReclaimOrphans(ctx context.Context) (int, error)
}

// Reaper periodically reclaims dead tokens and orphaned groups. Tokens are
// kept for a retention window past expiry so lookups keep reporting them
// as expired rather than unknown.
type Reaper struct {
	tokens     TokenPurger
	groups     OrphanReclaimer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
}

// ReaperOptions configures a Reaper.
type ReaperOptions struct {
	Interval   time.Duration
	Retention  time.Duration
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewReaper builds a reaper. Either collaborator may be nil.
func NewReaper(tokens TokenPurger, groups OrphanReclaimer, opts ReaperOptions) *Reaper {
	r := &Reaper{
		tokens:     tokens,
		groups:     groups,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
		interval:   opts.Interval,
		retention:  opts.Retention,
		now:        opts.Now,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Start runs the reaper until ctx is cancelled. A non-positive interval
// disables it. The returned channel closes once the loop has exited.
func (r *Reaper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if r.interval <= 0 {
		r.logger.Info("reaper disabled")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.logger.Info("reaper started", zap.Duration("interval", r.interval), zap.Duration("retention", r.retention))
		for {
			select {
			case <-ctx.Done():
				r.logger.Info("reaper stopped")
				return
			case <-ticker.C:
				r.RunOnce(ctx)
			}
		}
	}()
	return done
}

// RunOnce performs a single pass. Failures are logged and retried on the
// next tick.
func (r *Reaper) RunOnce(ctx context.Context) {
	if r.tokens != nil {
		cutoff := r.now().Add(-r.retention)
		n, err := r.tokens.PurgeExpired(ctx, cutoff)
		switch {
		case err != nil:
			r.logger.Warn("token purge failed", zap.Error(err))
		case n > 0:
			r.logger.Info("purged expired tokens", zap.Int("count", n), zap.Time("cutoff", cutoff))
			r.publish(ctx, events.Event{
				Type:    events.EventTokensPurged,
				Payload: events.ReclaimedPayload{Count: n},
			})
		}
	}

	if r.groups != nil {
		if _, err := r.groups.ReclaimOrphans(ctx); err != nil {
			r.logger.Warn("orphan group reclaim failed", zap.Error(err))
		}
	}
}

func (r *Reaper) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = r.now().UTC()
	if err := r.dispatcher.Publish(ctx, event); err != nil {
		r.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
