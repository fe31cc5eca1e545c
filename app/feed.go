package app

import (
	"context"

	"github.com/rinser/feedtail/domain"
)

// SnapshotService fetches a user's existing feed in one request.
type SnapshotService interface {
	// FetchSnapshot returns the user's publications, newest first.
	FetchSnapshot(ctx context.Context, userID string) (domain.Snapshot, error)
}

// StreamService opens the live update channel for a user.
type StreamService interface {
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription delivers publications in arrival order until closed.
type Subscription interface {
	// Next blocks until the next publication arrives. A malformed message
	// returns an error wrapping domain.ErrMalformedPublication or
	// domain.ErrInvalidUTF8 and leaves the subscription usable; any other
	// error ends it.
	Next(ctx context.Context) (domain.Publication, error)

	Close() error
}
