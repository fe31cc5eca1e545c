package feed

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rinser/feedtail/app"
	"github.com/rinser/feedtail/domain"
)

const dialTimeout = 10 * time.Second

func (m Model) fetchSnapshot() tea.Cmd {
	snapshot := m.snapshot
	userID := m.page.UserID
	return func() tea.Msg {
		pubs, err := snapshot.FetchSnapshot(context.Background(), userID)
		if err != nil {
			return SnapshotErrorMsg{Err: err}
		}
		return SnapshotLoadedMsg{Publications: pubs}
	}
}

func (m Model) subscribe() tea.Cmd {
	stream := m.stream
	userID := m.page.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		sub, err := stream.Subscribe(ctx, userID)
		if err != nil {
			return StreamErrorMsg{Err: err}
		}
		return StreamOpenedMsg{Sub: sub}
	}
}

// waitForPublication reads one stream message. Only one read is in flight at
// a time, so publications are applied in arrival order.
func waitForPublication(sub app.Subscription) tea.Cmd {
	return func() tea.Msg {
		pub, err := sub.Next(context.Background())
		if err != nil {
			if isRecoverable(err) {
				return PublicationErrorMsg{Err: err}
			}
			return StreamErrorMsg{Err: err}
		}
		return PublicationReceivedMsg{Publication: pub}
	}
}

func isRecoverable(err error) bool {
	return errors.Is(err, domain.ErrMalformedPublication) || errors.Is(err, domain.ErrInvalidUTF8)
}
