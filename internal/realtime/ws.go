package realtime

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"planboard/internal/models"
)

const wsGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const writeTimeout = 10 * time.Second

// ErrHandshake marks upgrade failures that happen after the connection has
// been hijacked; at that point an HTTP error response can no longer be sent.
var ErrHandshake = errors.New("websocket handshake failed")

// Conn is a minimal server-side WebSocket connection: text frames out,
// control frames handled, inbound text ignored. Writes are safe to call from
// multiple goroutines; the hub publishes to a connection at any time.
type Conn struct {
	raw net.Conn

	wmu sync.Mutex
}

// Upgrade hijacks the HTTP connection and completes the WebSocket handshake.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	key := r.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return nil, errors.New("missing websocket key")
	}
	hj, ok := w.(http.Hijacker)
	if !ok {
		return nil, errors.New("connection does not support hijacking")
	}
	raw, buf, err := hj.Hijack()
	if err != nil {
		return nil, err
	}

	h := sha1.New()
	h.Write([]byte(key + wsGUID))
	accept := base64.StdEncoding.EncodeToString(h.Sum(nil))

	if _, err := fmt.Fprintf(buf,
		"HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Accept: %s\r\n\r\n",
		accept); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if err := buf.Flush(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	return &Conn{raw: raw}, nil
}

// WriteEvent sends one alert event as a JSON text frame.
func (c *Conn) WriteEvent(ev models.AlertEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.writeFrame(0x1, data)
}

// WaitClose consumes inbound frames until the peer closes the connection or
// the transport fails. Pings are answered; client text frames are discarded —
// the alert channel only pushes server to client.
func (c *Conn) WaitClose() error {
	for {
		opcode, payload, err := c.readFrame()
		if err != nil {
			return err
		}
		switch opcode {
		case 0x8: // close
			return nil
		case 0x9: // ping
			if err := c.writeFrame(0xA, payload); err != nil {
				return err
			}
		default:
			// pong or client text: ignore
		}
	}
}

func (c *Conn) Close() error {
	_ = c.writeFrame(0x8, nil)
	return c.raw.Close()
}

func (c *Conn) readFrame() (byte, []byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(c.raw, header); err != nil {
		return 0, nil, err
	}
	opcode := header[0] & 0x0F
	masked := header[1]&0x80 != 0
	length := uint64(header[1] & 0x7F)

	switch length {
	case 126:
		ext := make([]byte, 2)
		if _, err := io.ReadFull(c.raw, ext); err != nil {
			return 0, nil, err
		}
		length = uint64(binary.BigEndian.Uint16(ext))
	case 127:
		ext := make([]byte, 8)
		if _, err := io.ReadFull(c.raw, ext); err != nil {
			return 0, nil, err
		}
		length = binary.BigEndian.Uint64(ext)
	}
	if length > 1<<20 {
		return 0, nil, errors.New("frame too large")
	}

	var maskKey [4]byte
	if masked {
		if _, err := io.ReadFull(c.raw, maskKey[:]); err != nil {
			return 0, nil, err
		}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.raw, payload); err != nil {
		return 0, nil, err
	}
	if masked {
		for i := range payload {
			payload[i] ^= maskKey[i%4]
		}
	}
	return opcode, payload, nil
}

func (c *Conn) writeFrame(opcode byte, payload []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	header := []byte{0x80 | opcode}
	length := len(payload)
	switch {
	case length < 126:
		header = append(header, byte(length))
	case length <= 0xFFFF:
		header = append(header, 126, 0, 0)
		binary.BigEndian.PutUint16(header[2:], uint16(length))
	default:
		header = append(header, 127, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.BigEndian.PutUint64(header[2:], uint64(length))
	}

	_ = c.raw.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.raw.Write(header); err != nil {
		return err
	}
	if length > 0 {
		if _, err := c.raw.Write(payload); err != nil {
			return err
		}
	}
	return nil
}
