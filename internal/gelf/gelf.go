package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Writer sends GELF messages over UDP. It implements io.Writer and expects
// each Write to carry one JSON log entry, which is what a zap JSON core
// produces, so it can be wrapped with zapcore.AddSync.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// syslog severities keyed by zap level names.
var levels = map[string]int{
	"debug":  7,
	"info":   6,
	"warn":   4,
	"error":  3,
	"dpanic": 2,
	"panic":  2,
	"fatal":  2,
}

// Write implements io.Writer. Each call sends one GELF message.
func (w *Writer) Write(p []byte) (int, error) {
	payload, err := w.Encode(p)
	if err != nil {
		return len(p), nil // never fail the log call
	}
	// Fire-and-forget
	w.conn.Write(payload)
	return len(p), nil
}

// Encode turns one zap JSON entry into a GELF 1.1 document. Lines that are
// not JSON are sent verbatim as the short message.
func (w *Writer) Encode(p []byte) ([]byte, error) {
	line := strings.TrimRight(string(p), "\n")

	msg := map[string]any{
		"version":   "1.1",
		"host":      w.hostname,
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
		"level":     6,
		"_service":  w.service,
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		msg["short_message"] = line
		return json.Marshal(msg)
	}

	short, _ := entry["msg"].(string)
	if short == "" {
		short = line
	}
	msg["short_message"] = short
	if lvl, ok := entry["level"].(string); ok {
		if sev, ok := levels[lvl]; ok {
			msg["level"] = sev
		}
	}
	if ts, ok := entry["ts"].(float64); ok {
		msg["timestamp"] = ts
	}
	for k, v := range entry {
		switch k {
		case "msg", "level", "ts", "id":
			continue
		}
		msg["_"+k] = v
	}
	return json.Marshal(msg)
}

// Sync satisfies zapcore.WriteSyncer; UDP has nothing to flush.
func (w *Writer) Sync() error { return nil }

// Close closes the UDP socket.
func (w *Writer) Close() error { return w.conn.Close() }
