package feedhttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rinser/feedtail/domain"
)

type recordedRequest struct {
	path   string
	accept string
	agent  string
}

type requestLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.reqs...)
}

func newFeedServer(t *testing.T, status int, body string) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.mu.Lock()
		log.reqs = append(log.reqs, recordedRequest{
			path:   r.URL.Path,
			accept: r.Header.Get("Accept"),
			agent:  r.Header.Get("User-Agent"),
		})
		log.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, log
}

func serverPort(t *testing.T, ts *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return port
}

func TestFetchSnapshot_RequestsUserFeedPath(t *testing.T) {
	ts, reqs := newFeedServer(t, http.StatusOK, `[{"author":"b","text":"t2","at":2},{"author":"a","text":"t1","at":1}]`)

	pg, err := domain.ParsePage("http://127.0.0.1/index.html?userId=42")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	client := NewClient(pg.BaseURL(serverPort(t, ts)), "feedtail/test", time.Second)
	svc := NewSnapshotService(client, nil)

	snap, err := svc.FetchSnapshot(context.Background(), pg.UserID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	all := reqs.all()
	if len(all) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(all))
	}
	got := all[0]
	if got.path != "/feed/42" {
		t.Fatalf("unexpected path: %q", got.path)
	}
	if got.accept != "application/json" || got.agent != "feedtail/test" {
		t.Fatalf("unexpected headers: %+v", got)
	}
	if len(snap) != 2 || snap[0].Author != "b" || snap[1].At != "1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestFetchSnapshot_NonSuccessStatus(t *testing.T) {
	ts, _ := newFeedServer(t, http.StatusInternalServerError, `redis down`)
	svc := NewSnapshotService(NewClient(ts.URL, "", time.Second), nil)

	_, err := svc.FetchSnapshot(context.Background(), "1")
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "redis down") {
		t.Fatalf("error should carry status and body: %v", err)
	}
}

func TestFetchSnapshot_MalformedBody(t *testing.T) {
	ts, _ := newFeedServer(t, http.StatusOK, `{"not":"an array"}`)
	svc := NewSnapshotService(NewClient(ts.URL, "", time.Second), nil)

	_, err := svc.FetchSnapshot(context.Background(), "1")
	if !errors.Is(err, domain.ErrMalformedPublication) {
		t.Fatalf("expected ErrMalformedPublication, got %v", err)
	}
}

func TestFetchSnapshot_EmptyFeed(t *testing.T) {
	ts, _ := newFeedServer(t, http.StatusOK, `[]`)
	svc := NewSnapshotService(NewClient(ts.URL, "", time.Second), nil)

	snap, err := svc.FetchSnapshot(context.Background(), "1")
	if err != nil || len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v %v", snap, err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	_, err := NewClient(base, "", time.Second).Get(context.Background(), "/feed/1")
	if err == nil || !strings.Contains(err.Error(), "/feed/1") {
		t.Fatalf("expected request error mentioning path, got %v", err)
	}
}
