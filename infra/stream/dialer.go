package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rinser/feedtail/app"
	"github.com/rinser/feedtail/domain"
)

// DefaultReadLimit bounds a single stream message.
const DefaultReadLimit = 64 << 10

// Dialer implements app.StreamService over a WebSocket connection.
type Dialer struct {
	baseURL   string
	readLimit int64
	log       *zerolog.Logger
}

// NewDialer creates a Dialer for the given ws:// or wss:// origin.
func NewDialer(baseURL string, readLimit int64, logger *zerolog.Logger) *Dialer {
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Dialer{baseURL: baseURL, readLimit: readLimit, log: logger}
}

// Subscribe opens the user's live stream. The context only bounds the handshake.
func (d *Dialer) Subscribe(ctx context.Context, userID string) (app.Subscription, error) {
	url := d.baseURL + domain.StreamPath(userID)

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(d.readLimit)

	logger := d.log.With().
		Str("session_id", uuid.NewString()).
		Str("user_id", userID).
		Logger()
	logger.Info().Str("url", url).Msg("stream connected")

	return &subscription{conn: conn, log: logger}, nil
}

type subscription struct {
	conn *websocket.Conn
	log  zerolog.Logger
}

func (s *subscription) Next(ctx context.Context) (domain.Publication, error) {
	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return domain.Publication{}, s.readErr(err)
	}

	if !utf8.Valid(data) {
		s.log.Warn().Int("bytes", len(data)).Msg("dropping non UTF-8 message")
		return domain.Publication{}, fmt.Errorf("%w: %d bytes", domain.ErrInvalidUTF8, len(data))
	}

	pub, err := domain.DecodePublication(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("dropping malformed message")
		return domain.Publication{}, err
	}
	return pub, nil
}

func (s *subscription) readErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		s.log.Info().Msg("stream closed by server")
		return domain.ErrStreamClosed
	}
	if errors.Is(err, io.EOF) {
		s.log.Info().Msg("stream ended")
		return domain.ErrStreamClosed
	}
	s.log.Error().Err(err).Msg("stream read failed")
	return fmt.Errorf("reading stream: %w", err)
}

// Close performs the closing handshake. It errors if the server already closed.
func (s *subscription) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "bye")
}
