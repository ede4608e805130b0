package socket

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

type fakeConn struct {
	in      chan []byte
	written chan []byte

	mu        sync.Mutex
	readLimit int64
	pong      func(string) error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:      make(chan []byte, 8),
		written: make(chan []byte, 32),
		closed:  make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg, ok := <-f.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, msg, nil
	case <-f.closed:
		return 0, nil, io.EOF
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("connection closed")
	default:
	}
	if messageType != websocket.TextMessage {
		return nil
	}
	cp := append([]byte(nil), data...)
	select {
	case f.written <- cp:
	default:
	}
	return nil
}

func (f *fakeConn) SetReadLimit(limit int64) {
	f.mu.Lock()
	f.readLimit = limit
	f.mu.Unlock()
}

func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) SetPongHandler(h func(string) error) {
	f.mu.Lock()
	f.pong = h
	f.mu.Unlock()
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}
