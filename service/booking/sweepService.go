package booking

import (
	"context"
	"time"
)

// Sweeper periodically flips stale PENDING bookings to EXPIRED. It does
// not touch thing status: a single-use thing whose pending booking
// expires stays TAKEN until the owner resolves it explicitly. That
// mirrors the long-standing product behavior; see the sweep tests.
type Sweeper interface {
	ExpireStalePending(ctx context.Context) (int64, error)
}

type sweeper struct {
	b      Repo
	window time.Duration
	now    func() time.Time
}

func NewSweeper(b Repo, window time.Duration) Sweeper {
	return &sweeper{b: b, window: window, now: time.Now}
}

func (s *sweeper) ExpireStalePending(ctx context.Context) (int64, error) {
	return s.b.ExpireStalePending(ctx, s.now().Add(-s.window))
}
