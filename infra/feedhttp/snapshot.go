package feedhttp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rinser/feedtail/domain"
)

// snapshotService implements app.SnapshotService over the feed HTTP endpoint.
type snapshotService struct {
	client *Client
	log    *zerolog.Logger
}

// NewSnapshotService creates a SnapshotService backed by the feed server.
func NewSnapshotService(client *Client, logger *zerolog.Logger) *snapshotService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &snapshotService{client: client, log: logger}
}

func (s *snapshotService) FetchSnapshot(ctx context.Context, userID string) (domain.Snapshot, error) {
	path := domain.FeedPath(userID)

	data, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}

	snap, err := domain.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	s.log.Debug().Str("user_id", userID).Int("count", len(snap)).Msg("feed snapshot fetched")
	return snap, nil
}
