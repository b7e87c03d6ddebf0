package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/curiousframe/internal/capture"
)

func cameraServer(t *testing.T, send func(*websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		send(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSource_ReadsBinaryFramesThenEnds(t *testing.T) {
	url := cameraServer(t, func(c *websocket.Conn) {
		_ = c.WriteMessage(websocket.TextMessage, []byte("hello"))
		_ = c.WriteMessage(websocket.BinaryMessage, []byte{0xff, 0xd8, 0x01})
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	})

	src, err := New(url)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if len(f.Data) != 3 || f.Ext != "jpg" {
		t.Fatalf("unexpected frame %+v", f)
	}

	if _, err := src.Next(ctx); !errors.Is(err, capture.ErrEndOfStream) {
		t.Fatalf("expected end of stream, got %v", err)
	}
}

func TestSource_ReturnsNewestFrame(t *testing.T) {
	url := cameraServer(t, func(c *websocket.Conn) {
		for i := 1; i <= 5; i++ {
			_ = c.WriteMessage(websocket.BinaryMessage, []byte{byte(i)})
		}
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	})

	src, err := New(url)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := src.connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	<-src.done

	f, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if len(f.Data) != 1 || f.Data[0] != 5 {
		t.Fatalf("expected newest frame 5, got %v", f.Data)
	}
	if _, err := src.Next(ctx); !errors.Is(err, capture.ErrEndOfStream) {
		t.Fatalf("expected end of stream, got %v", err)
	}
}

func TestSource_QuietCameraRepeatsLastFrame(t *testing.T) {
	url := cameraServer(t, func(c *websocket.Conn) {
		_ = c.WriteMessage(websocket.BinaryMessage, []byte{0xff, 0xd8, 0x07})
		// Stay connected without sending until the client hangs up.
		_, _, _ = c.ReadMessage()
	})

	src, err := New(url)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	first, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}

	quiet, cancelQuiet := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelQuiet()
	again, err := src.Next(quiet)
	if err != nil {
		t.Fatalf("quiet camera ended the stream: %v", err)
	}
	if string(again.Data) != string(first.Data) {
		t.Fatalf("expected the last frame again, got %v", again.Data)
	}
}

func TestSource_NoFrameYet(t *testing.T) {
	url := cameraServer(t, func(c *websocket.Conn) {
		_, _, _ = c.ReadMessage()
	})

	src, err := New(url)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestNew_RejectsHTTPScheme(t *testing.T) {
	if _, err := New("http://camera.local/frames"); err == nil {
		t.Fatalf("expected scheme error")
	}
}
