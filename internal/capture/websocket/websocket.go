// Package websocket implements capture.Source for a remote camera that
// pushes encoded frames as binary WebSocket messages.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/curiousframe/internal/capture"
)

// Source reads frames from a WebSocket connection. The camera pushes frames
// continuously; only the newest one is kept, so Next always returns the
// current scene however long the session spent between captures.
type Source struct {
	url string
	now func() time.Time

	conn   *websocket.Conn
	latest chan []byte   // newest unread frame, at most one
	done   chan struct{} // closed when the reader stops
	err    error         // why the reader stopped, valid once done is closed
	last   []byte
}

// New creates a source for wsURL. The connection is opened on the first Next.
func New(wsURL string) (*Source, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("parsing websocket url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("websocket url must use ws or wss, got %q", u.Scheme)
	}
	return &Source{url: u.String(), now: time.Now}, nil
}

// Name returns the backend identifier.
func (s *Source) Name() string { return "websocket" }

// Next returns the newest binary message as a JPEG frame, waiting for one if
// none arrived since the last call. When the camera stays quiet until ctx
// ends, the previous frame is returned again. A closed connection ends the
// stream.
func (s *Source) Next(ctx context.Context) (capture.Frame, error) {
	if s.conn == nil {
		if err := s.connect(ctx); err != nil {
			return capture.Frame{}, fmt.Errorf("%w: dialing camera: %v", capture.ErrEndOfStream, err)
		}
	}

	select {
	case data := <-s.latest:
		return s.frame(data), nil
	case <-s.done:
		select {
		case data := <-s.latest:
			return s.frame(data), nil
		default:
		}
		var closeErr *websocket.CloseError
		if errors.As(s.err, &closeErr) {
			return capture.Frame{}, fmt.Errorf("%w: camera closed the stream (%d)", capture.ErrEndOfStream, closeErr.Code)
		}
		return capture.Frame{}, fmt.Errorf("%w: reading frame: %v", capture.ErrEndOfStream, s.err)
	case <-ctx.Done():
		if s.last == nil {
			return capture.Frame{}, fmt.Errorf("waiting for camera: %w", ctx.Err())
		}
		slog.Debug("camera quiet, reusing last frame", "bytes", len(s.last))
		return s.frame(s.last), nil
	}
}

func (s *Source) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	slog.Info("connected to camera", "url", s.url)
	s.conn = conn
	s.latest = make(chan []byte, 1)
	s.done = make(chan struct{})
	go s.read(conn)
	return nil
}

// read drains the connection, replacing any unread frame with the newer one.
func (s *Source) read(conn *websocket.Conn) {
	defer close(s.done)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			s.err = err
			return
		}
		if kind != websocket.BinaryMessage || len(data) == 0 {
			slog.Debug("skipping non-frame message", "type", kind, "bytes", len(data))
			continue
		}
		select {
		case <-s.latest:
		default:
		}
		s.latest <- data
	}
}

func (s *Source) frame(data []byte) capture.Frame {
	s.last = data
	return capture.Frame{Data: data, Ext: "jpg", CapturedAt: s.now()}
}

// Close sends a close frame, drops the connection and waits for the reader.
func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := s.conn.Close()
	<-s.done
	return err
}
