package logging

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"
)

// GELFWriter ships each log line as one GELF 1.1 datagram over UDP.
type GELFWriter struct {
	conn    net.Conn
	host    string
	service string
}

func NewGELFWriter(addr, service string) (*GELFWriter, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	if host == "" {
		host = service
	}
	return &GELFWriter{conn: conn, host: host, service: service}, nil
}

// stdlib log prefix "2006/01/02 15:04:05 "
const logPrefixLen = 20

func (w *GELFWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if len(msg) > logPrefixLen && msg[4] == '/' && msg[7] == '/' && msg[13] == ':' {
		msg = msg[logPrefixLen:]
	}

	payload, err := json.Marshal(map[string]any{
		"version":       "1.1",
		"host":          w.host,
		"short_message": msg,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
		"level":         syslogLevel(msg),
		"_service":      w.service,
	})
	if err != nil {
		return len(p), nil
	}
	// Lost datagrams are acceptable; never fail the log call.
	_, _ = w.conn.Write(payload)
	return len(p), nil
}

func (w *GELFWriter) Close() error { return w.conn.Close() }

func syslogLevel(msg string) int {
	switch {
	case strings.Contains(msg, "panic") || strings.HasPrefix(msg, "Fatal") || strings.HasPrefix(msg, "Error"):
		return 3
	case strings.HasPrefix(msg, "Warning:"):
		return 4
	default:
		return 6
	}
}

// Setup tees the standard logger to GELF when addr is set. The returned
// closer is never nil.
func Setup(addr, service string) io.Closer {
	if addr == "" {
		return io.NopCloser(nil)
	}
	w, err := NewGELFWriter(addr, service)
	if err != nil {
		log.Printf("Warning: GELF sink %s unavailable: %v", addr, err)
		return io.NopCloser(nil)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, w))
	log.Printf("Logging to GELF at %s", addr)
	return w
}
