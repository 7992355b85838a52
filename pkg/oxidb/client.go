// Package oxidb provides a TCP client for oxidb-server.
//
// Protocol: each message is [4-byte little-endian length][JSON payload].
// Server responds with {"ok": true, "data": ...} or {"ok": false, "error": "..."}.
//
// Every call takes a context; its deadline becomes the socket deadline for
// that round trip.
package oxidb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// Client is a TCP client for oxidb-server. Thread-safe via mutex.
//
// A round trip that fails after its frame started going out leaves the
// stream at an unknown position, so the connection is closed and every later
// call fails with ErrBroken.
type Client struct {
	conn   net.Conn
	mu     sync.Mutex
	broken bool
}

// Connect creates a new client connected to oxidb-server.
func Connect(ctx context.Context, host string, port int) (*Client, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("oxidb: connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// ConnectTimeout is Connect bounded by a plain timeout.
func ConnectTimeout(host string, port int, timeout time.Duration) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Connect(ctx, host, port)
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken = true
	return c.conn.Close()
}

// Broken reports whether the connection was closed or lost sync.
func (c *Client) Broken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken
}

// fail closes the connection after a failed round trip. Callers hold c.mu.
func (c *Client) fail(err error) error {
	c.broken = true
	c.conn.Close()
	return err
}

// ------------------------------------------------------------------
// Low-level protocol
// ------------------------------------------------------------------

func writeFrame(w io.Writer, data []byte) error {
	buf := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, fmt.Errorf("oxidb: read length: %w", err)
	}
	length := binary.LittleEndian.Uint32(lenBuf)
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("oxidb: read payload: %w", err)
	}
	return payload, nil
}

type response struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) request(ctx context.Context, payload map[string]any) (*response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("oxidb: marshal request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return nil, ErrBroken
	}

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, c.fail(fmt.Errorf("oxidb: set deadline: %w", err))
	}
	if err := writeFrame(c.conn, jsonBytes); err != nil {
		return nil, c.fail(fmt.Errorf("oxidb: send: %w", err))
	}
	respBytes, err := readFrame(c.conn)
	if err != nil {
		return nil, c.fail(err)
	}
	var resp response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("oxidb: unmarshal response: %w", err)
	}
	return &resp, nil
}

// checked sends payload and decodes the data field into out (if non-nil).
func (c *Client) checked(ctx context.Context, payload map[string]any, out any) error {
	resp, err := c.request(ctx, payload)
	if err != nil {
		return err
	}
	if !resp.OK {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return &Error{Cmd: fmt.Sprint(payload["cmd"]), Msg: msg}
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("oxidb: decode %v data: %w", payload["cmd"], err)
	}
	return nil
}

// ------------------------------------------------------------------
// Utility
// ------------------------------------------------------------------

// Ping sends a ping to the server. Returns "pong".
func (c *Client) Ping(ctx context.Context) (string, error) {
	var s string
	err := c.checked(ctx, map[string]any{"cmd": "ping"}, &s)
	return s, err
}

// DropCollection drops a collection and its data.
func (c *Client) DropCollection(ctx context.Context, name string) error {
	return c.checked(ctx, map[string]any{"cmd": "drop_collection", "collection": name}, nil)
}

// ------------------------------------------------------------------
// CRUD
// ------------------------------------------------------------------

// Insert inserts a single document and returns the new document id.
func (c *Client) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	var data map[string]any
	if err := c.checked(ctx, map[string]any{"cmd": "insert", "collection": collection, "doc": doc}, &data); err != nil {
		return "", err
	}
	return FormatID(data["id"]), nil
}

// InsertMany inserts multiple documents and returns their ids in order.
func (c *Client) InsertMany(ctx context.Context, collection string, docs []map[string]any) ([]string, error) {
	var data []any
	if err := c.checked(ctx, map[string]any{"cmd": "insert_many", "collection": collection, "docs": docs}, &data); err != nil {
		return nil, err
	}
	ids := make([]string, len(data))
	for i, v := range data {
		ids[i] = FormatID(v)
	}
	return ids, nil
}

// FindOptions holds optional parameters for Find.
type FindOptions struct {
	Sort  map[string]any
	Skip  *int
	Limit *int
}

// Find returns documents matching a query.
func (c *Client) Find(ctx context.Context, collection string, query map[string]any, opts *FindOptions) ([]map[string]any, error) {
	payload := map[string]any{"cmd": "find", "collection": collection, "query": query}
	if opts != nil {
		if opts.Sort != nil {
			payload["sort"] = opts.Sort
		}
		if opts.Skip != nil {
			payload["skip"] = *opts.Skip
		}
		if opts.Limit != nil {
			payload["limit"] = *opts.Limit
		}
	}
	var docs []map[string]any
	if err := c.checked(ctx, payload, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindOne returns a single document matching a query, or nil.
func (c *Client) FindOne(ctx context.Context, collection string, query map[string]any) (map[string]any, error) {
	var doc map[string]any
	if err := c.checked(ctx, map[string]any{"cmd": "find_one", "collection": collection, "query": query}, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateResult is the server's answer to update commands.
type UpdateResult struct {
	Matched  int `json:"matched"`
	Modified int `json:"modified"`
}

// UpdateOne updates at most one document matching a query.
func (c *Client) UpdateOne(ctx context.Context, collection string, query, update map[string]any) (*UpdateResult, error) {
	var res UpdateResult
	err := c.checked(ctx, map[string]any{
		"cmd": "update_one", "collection": collection,
		"query": query, "update": update,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Count returns the number of documents matching a query.
func (c *Client) Count(ctx context.Context, collection string, query map[string]any) (int, error) {
	var data struct {
		Count int `json:"count"`
	}
	if err := c.checked(ctx, map[string]any{"cmd": "count", "collection": collection, "query": query}, &data); err != nil {
		return 0, err
	}
	return data.Count, nil
}

// ------------------------------------------------------------------
// Indexes
// ------------------------------------------------------------------

// CreateIndex creates a non-unique index on a field.
func (c *Client) CreateIndex(ctx context.Context, collection, field string) error {
	return c.checked(ctx, map[string]any{"cmd": "create_index", "collection": collection, "field": field}, nil)
}

// CreateUniqueIndex creates a unique index on a field.
func (c *Client) CreateUniqueIndex(ctx context.Context, collection, field string) error {
	return c.checked(ctx, map[string]any{"cmd": "create_unique_index", "collection": collection, "field": field}, nil)
}

// CreateCompositeIndex creates a composite index on multiple fields.
func (c *Client) CreateCompositeIndex(ctx context.Context, collection string, fields []string) error {
	return c.checked(ctx, map[string]any{"cmd": "create_composite_index", "collection": collection, "fields": fields}, nil)
}

// ------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------

// FormatID renders an OxiDB document id as a string. The server hands out
// auto-increment numeric ids, which arrive as JSON numbers.
func FormatID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	case int:
		return fmt.Sprintf("%d", id)
	case json.Number:
		return id.String()
	}
	return ""
}
