package realtime

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// deadConn fails every write, so the handshake cannot reach the peer.
type deadConn struct{}

func (deadConn) Read([]byte) (int, error)         { return 0, io.EOF }
func (deadConn) Write([]byte) (int, error)        { return 0, errors.New("wire down") }
func (deadConn) Close() error                     { return nil }
func (deadConn) LocalAddr() net.Addr              { return &net.TCPAddr{} }
func (deadConn) RemoteAddr() net.Addr             { return &net.TCPAddr{} }
func (deadConn) SetDeadline(time.Time) error      { return nil }
func (deadConn) SetReadDeadline(time.Time) error  { return nil }
func (deadConn) SetWriteDeadline(time.Time) error { return nil }

type hijackRecorder struct {
	*httptest.ResponseRecorder
	conn net.Conn
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	rw := bufio.NewReadWriter(bufio.NewReader(h.conn), bufio.NewWriter(h.conn))
	return h.conn, rw, nil
}

func upgradeRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws/alerts", nil)
	r.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return r
}

func TestUpgrade_MissingKeyFailsBeforeHijack(t *testing.T) {
	w := httptest.NewRecorder()
	_, err := Upgrade(w, httptest.NewRequest(http.MethodGet, "/ws/alerts", nil))
	if err == nil {
		t.Fatal("expected error for a request without a websocket key")
	}
	if errors.Is(err, ErrHandshake) {
		t.Error("pre-hijack failure must not be marked as a handshake failure")
	}
}

func TestUpgrade_NonHijackerFailsBeforeHijack(t *testing.T) {
	w := httptest.NewRecorder() // not an http.Hijacker
	_, err := Upgrade(w, upgradeRequest())
	if err == nil {
		t.Fatal("expected error for a writer without hijack support")
	}
	if errors.Is(err, ErrHandshake) {
		t.Error("pre-hijack failure must not be marked as a handshake failure")
	}
}

func TestUpgrade_HandshakeWriteFailureIsMarked(t *testing.T) {
	w := &hijackRecorder{ResponseRecorder: httptest.NewRecorder(), conn: deadConn{}}
	_, err := Upgrade(w, upgradeRequest())
	if err == nil {
		t.Fatal("expected error when the handshake cannot be written")
	}
	if !errors.Is(err, ErrHandshake) {
		t.Errorf("post-hijack failure should wrap ErrHandshake, got %v", err)
	}
}
