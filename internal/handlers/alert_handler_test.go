package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"planboard/internal/models"
	"planboard/internal/notifier"
	"planboard/internal/realtime"
	"planboard/internal/services"
)

func newAlertRouter(alerts *services.AlertStore, notif notifier.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hub := realtime.NewAlertHub()
	h := NewAlertHandler(alerts, notif, hub, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", int64(1)) })
	r.GET("/alerts", h.List)
	r.DELETE("/alerts/:index", h.Remove)
	r.POST("/alerts/permission", h.RequestPermission)
	r.GET("/ws/alerts", h.Stream)
	return r
}

// deadConn fails every write, so the websocket handshake cannot complete.
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

func TestAlertHandler_ListAndRemove(t *testing.T) {
	alerts := services.NewAlertStore()
	alerts.Append(1, models.Alert{Message: "first"})
	alerts.Append(1, models.Alert{Message: "second"})

	hub := realtime.NewAlertHub()
	r := newAlertRouter(alerts, notifier.NewHubNotifier(hub))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var got []models.Alert
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Message != "first" {
		t.Fatalf("unexpected alerts: %+v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/alerts/0", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", w.Code)
	}
	if list := alerts.List(1); len(list) != 1 || list[0].Message != "second" {
		t.Errorf("unexpected list after removal: %+v", list)
	}

	t.Run("bad index", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/alerts/abc", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("missing index", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/alerts/9", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestAlertHandler_StreamUpgradeFailures(t *testing.T) {
	hub := realtime.NewAlertHub()
	r := newAlertRouter(services.NewAlertStore(), notifier.NewHubNotifier(hub))

	t.Run("before hijack the error is a JSON response", func(t *testing.T) {
		// a plain recorder has no Hijack, so the upgrade fails up front
		req := httptest.NewRequest(http.MethodGet, "/ws/alerts", nil)
		req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		if w.Body.Len() == 0 {
			t.Error("pre-hijack failure should carry an error body")
		}
	})

	t.Run("after hijack nothing more is written", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws/alerts", nil)
		req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
		w := &hijackRecorder{ResponseRecorder: httptest.NewRecorder(), conn: deadConn{}}
		r.ServeHTTP(w, req)
		if w.Body.Len() != 0 {
			t.Errorf("handshake failure after hijack must not write a response, got %q", w.Body.String())
		}
	})
}

func TestAlertHandler_RequestPermission(t *testing.T) {
	hub := realtime.NewAlertHub()
	notif := notifier.NewHubNotifier(hub)
	r := newAlertRouter(services.NewAlertStore(), notif)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/alerts/permission", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !notif.Granted(1) {
		t.Error("permission endpoint should grant notifications for the session")
	}
}
