// Package oxidbtest runs an in-process stand-in for oxidb-server that speaks
// the framed JSON protocol. It keeps collections in memory and understands
// the subset of commands the oxidb client issues: equality queries, a single
// sort key, skip/limit and $set updates.
package oxidbtest

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"
)

// Server is a fake oxidb-server listening on a loopback port.
type Server struct {
	ln net.Listener

	mu          sync.Mutex
	collections map[string][]map[string]any
	nextID      int
	failCmds    map[string]string
	delays      []time.Duration
	calls       []map[string]any
}

// NewServer starts a fake server and stops it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("oxidbtest: listen: %v", err)
	}
	s := &Server{
		ln:          ln,
		collections: map[string][]map[string]any{},
		failCmds:    map[string]string{},
	}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

// Host returns the listening host.
func (s *Server) Host() string {
	return s.ln.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listening port.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// FailCommand makes every following cmd answer with {"ok":false,"error":msg}.
// An empty msg clears the failure.
func (s *Server) FailCommand(cmd, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == "" {
		delete(s.failCmds, cmd)
		return
	}
	s.failCmds[cmd] = msg
}

// DelayReplies holds back the next len(d) replies, the i-th by d[i].
func (s *Server) DelayReplies(d ...time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d...)
}

func (s *Server) nextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.delays) == 0 {
		return 0
	}
	d := s.delays[0]
	s.delays = s.delays[1:]
	return d
}

// Docs returns a copy of the stored documents of a collection.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		out = append(out, cloneDoc(d))
	}
	return out
}

// Calls returns the requests received so far, in order.
func (s *Server) Calls() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.calls...)
}

// CallsFor returns the received requests with the given cmd.
func (s *Server) CallsFor(cmd string) []map[string]any {
	var out []map[string]any
	for _, c := range s.Calls() {
		if c["cmd"] == cmd {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		resp := map[string]any{}
		if err := json.Unmarshal(payload, &req); err != nil {
			resp["ok"] = false
			resp["error"] = "bad json"
		} else {
			data, errMsg := s.dispatch(req)
			if errMsg != "" {
				resp["ok"] = false
				resp["error"] = errMsg
			} else {
				resp["ok"] = true
				resp["data"] = data
			}
		}
		if d := s.nextDelay(); d > 0 {
			time.Sleep(d)
		}
		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req map[string]any) (any, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)

	cmd, _ := req["cmd"].(string)
	if msg, ok := s.failCmds[cmd]; ok {
		return nil, msg
	}
	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)

	switch cmd {
	case "ping":
		return "pong", ""
	case "create_index", "create_unique_index", "create_composite_index":
		return "ok", ""
	case "drop_collection":
		delete(s.collections, coll)
		return "ok", ""
	case "insert":
		doc, _ := req["doc"].(map[string]any)
		return map[string]any{"id": s.insert(coll, doc)}, ""
	case "insert_many":
		docs, _ := req["docs"].([]any)
		ids := make([]any, 0, len(docs))
		for _, d := range docs {
			m, _ := d.(map[string]any)
			ids = append(ids, s.insert(coll, m))
		}
		return ids, ""
	case "find":
		docs := s.match(coll, query)
		if sortSpec, ok := req["sort"].(map[string]any); ok {
			sortDocs(docs, sortSpec)
		}
		if skip, ok := req["skip"].(float64); ok {
			if int(skip) >= len(docs) {
				docs = nil
			} else {
				docs = docs[int(skip):]
			}
		}
		if limit, ok := req["limit"].(float64); ok && int(limit) < len(docs) {
			docs = docs[:int(limit)]
		}
		if docs == nil {
			docs = []map[string]any{}
		}
		return docs, ""
	case "find_one":
		docs := s.match(coll, query)
		if len(docs) == 0 {
			return nil, ""
		}
		return docs[0], ""
	case "count":
		return map[string]any{"count": len(s.match(coll, query))}, ""
	case "update_one":
		update, _ := req["update"].(map[string]any)
		set, _ := update["$set"].(map[string]any)
		for _, d := range s.collections[coll] {
			if matches(d, query) {
				for k, v := range set {
					d[k] = v
				}
				return map[string]any{"matched": 1, "modified": 1}, ""
			}
		}
		return map[string]any{"matched": 0, "modified": 0}, ""
	}
	return nil, fmt.Sprintf("unknown command: %s", cmd)
}

func (s *Server) insert(coll string, doc map[string]any) float64 {
	s.nextID++
	d := cloneDoc(doc)
	d["_id"] = float64(s.nextID)
	s.collections[coll] = append(s.collections[coll], d)
	return float64(s.nextID)
}

func (s *Server) match(coll string, query map[string]any) []map[string]any {
	var out []map[string]any
	for _, d := range s.collections[coll] {
		if matches(d, query) {
			out = append(out, cloneDoc(d))
		}
	}
	return out
}

func matches(doc, query map[string]any) bool {
	for k, want := range query {
		got, ok := doc[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func sortDocs(docs []map[string]any, spec map[string]any) {
	for field, dir := range spec {
		desc := fmt.Sprint(dir) == "-1"
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := sortKey(docs[i][field]), sortKey(docs[j][field])
			if desc {
				return a > b
			}
			return a < b
		})
		return
	}
}

func sortKey(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%020s", strconv.FormatFloat(x, 'f', -1, 64))
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func cloneDoc(d map[string]any) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
