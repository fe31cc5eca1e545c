package feed

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rinser/feedtail/app"
	"github.com/rinser/feedtail/domain"
)

type stubSnapshot struct {
	mu    sync.Mutex
	calls []string
	snap  domain.Snapshot
	err   error
}

func (s *stubSnapshot) FetchSnapshot(_ context.Context, userID string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, userID)
	return s.snap, s.err
}

func (s *stubSnapshot) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubStream struct {
	mu    sync.Mutex
	calls []string
	sub   *stubSubscription
	err   error
}

func (s *stubStream) Subscribe(_ context.Context, userID string) (app.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, userID)
	if s.err != nil {
		return nil, s.err
	}
	return s.sub, nil
}

func (s *stubStream) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type nextResult struct {
	pub domain.Publication
	err error
}

// stubSubscription replays queued results, then reports a closed stream.
type stubSubscription struct {
	mu      sync.Mutex
	results []nextResult
	closed  int
}

func (s *stubSubscription) Next(context.Context) (domain.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return domain.Publication{}, domain.ErrStreamClosed
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.pub, r.err
}

func (s *stubSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *stubSubscription) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func pub(author, text, at string) domain.Publication {
	return domain.Publication{Author: domain.Value(author), Text: domain.Value(text), At: domain.Value(at)}
}

func mustPage(raw string) (domain.Page, error) {
	return domain.ParsePage(raw)
}

func newActiveModel(snap *stubSnapshot, stream *stubStream) Model {
	pg, err := mustPage("http://host/page?userId=42")
	return New(snap, stream, pg, err, nil)
}

// drain feeds the result of each command back into the model until no command is left.
func drain(m Model, cmd tea.Cmd) Model {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return m
		}
		m, cmd = m.Update(msg)
	}
	return m
}

func rowsEqual(got []Row, want ...Row) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
