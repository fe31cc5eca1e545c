package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/rinser/feedtail/domain"
)

type frame struct {
	typ  websocket.MessageType
	data []byte
}

func binary(s string) frame { return frame{typ: websocket.MessageBinary, data: []byte(s)} }

// startStreamServer serves /<userID>/ws, writes frames in order, then closes with status.
func startStreamServer(t *testing.T, userID string, frames []frame, status websocket.StatusCode) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(domain.StreamPath(userID), func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		for _, f := range frames {
			if err := conn.Write(ctx, f.typ, f.data); err != nil {
				return
			}
		}
		conn.Close(status, "done")
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func wsBase(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1)
}

func subscribe(t *testing.T, ts *httptest.Server, userID string) (context.Context, *subscription) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	sub, err := NewDialer(wsBase(ts), 0, nil).Subscribe(ctx, userID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	t.Cleanup(func() { _ = sub.Close() })
	return ctx, sub.(*subscription)
}

func TestSubscribe_DeliversPublicationsInOrder(t *testing.T) {
	ts := startStreamServer(t, "7", []frame{
		binary(`{"author":"c","text":"t3","at":3}`),
		{typ: websocket.MessageText, data: []byte(`{"author":"d","text":"t4","at":4}`)},
	}, websocket.StatusNormalClosure)

	ctx, sub := subscribe(t, ts, "7")

	first, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first.Author != "c" || first.Text != "t3" || first.At != "3" {
		t.Fatalf("unexpected first publication: %+v", first)
	}
	second, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if second.Author != "d" {
		t.Fatalf("unexpected second publication: %+v", second)
	}
	if _, err := sub.Next(ctx); !errors.Is(err, domain.ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed after normal closure, got %v", err)
	}
}

func TestSubscribe_WrongUserPathFails(t *testing.T) {
	ts := startStreamServer(t, "7", nil, websocket.StatusNormalClosure)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := NewDialer(wsBase(ts), 0, nil).Subscribe(ctx, "8"); err == nil {
		t.Fatalf("expected dial error for unknown user path")
	}
}

func TestNext_MalformedMessagesAreRecoverable(t *testing.T) {
	ts := startStreamServer(t, "1", []frame{
		binary(`not json`),
		{typ: websocket.MessageBinary, data: []byte{0xff, 0xfe, 0xfd}},
		binary(`{"author":"ok","text":"after","at":5}`),
	}, websocket.StatusNormalClosure)

	ctx, sub := subscribe(t, ts, "1")

	if _, err := sub.Next(ctx); !errors.Is(err, domain.ErrMalformedPublication) {
		t.Fatalf("expected ErrMalformedPublication, got %v", err)
	}
	if _, err := sub.Next(ctx); !errors.Is(err, domain.ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	pub, err := sub.Next(ctx)
	if err != nil || pub.Author != "ok" {
		t.Fatalf("stream should continue after malformed messages: %+v %v", pub, err)
	}
}

func TestNext_AbnormalCloseIsAnError(t *testing.T) {
	ts := startStreamServer(t, "1", nil, websocket.StatusInternalError)

	ctx, sub := subscribe(t, ts, "1")

	_, err := sub.Next(ctx)
	if err == nil || errors.Is(err, domain.ErrStreamClosed) {
		t.Fatalf("expected read error for internal error close, got %v", err)
	}
	if websocket.CloseStatus(err) != websocket.StatusInternalError {
		t.Fatalf("close status should be preserved in chain: %v", err)
	}
}

func TestNext_ReadLimitEndsStream(t *testing.T) {
	big := `{"author":"a","text":"` + strings.Repeat("x", 256) + `","at":1}`
	ts := startStreamServer(t, "1", []frame{binary(big)}, websocket.StatusNormalClosure)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub, err := NewDialer(wsBase(ts), 64, nil).Subscribe(ctx, "1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if _, err := sub.Next(ctx); err == nil || errors.Is(err, domain.ErrMalformedPublication) {
		t.Fatalf("oversized message must end the stream, got %v", err)
	}
}
