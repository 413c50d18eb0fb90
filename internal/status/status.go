// Package status serves a read-only JSON introspection endpoint over the
// teacher's own bespoke HTTP/1.0 stack (internal/http10): twin occupancy,
// intent table size, bus queue depth, and active emergency worker count.
// Adapted from the original demo's /status handler in internal/server,
// repurposed from job-pool metrics to dispatch-simulation metrics.
package status

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"sync/atomic"
	"time"

	"dispatchsim/internal/bus"
	"dispatchsim/internal/http10"
	"dispatchsim/internal/intent"
	"dispatchsim/internal/resp"
	"dispatchsim/internal/twinpool"
	"dispatchsim/internal/util"
)

// activeCounter is the subset of ingress.Dispatcher the status surface
// needs — kept as an interface so this package doesn't import ingress
// directly and tests can fake it.
type activeCounter interface {
	ActiveCount() int
}

// Server hosts the admin/status HTTP/1.0 endpoint.
type Server struct {
	pool      *twinpool.Pool
	itable    *intent.Table
	bus       *bus.MemoryBus
	dispatch  activeCounter
	startedAt time.Time
	connCount uint64
}

func New(pool *twinpool.Pool, itable *intent.Table, b *bus.MemoryBus, dispatch activeCounter) *Server {
	return &Server{pool: pool, itable: itable, bus: b, dispatch: dispatch, startedAt: time.Now()}
}

// ListenAndServe accepts connections on addr until the listener errors
// (typically because the process is shutting down).
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		atomic.AddUint64(&s.connCount, 1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(c net.Conn) {
	defer c.Close()

	trace := map[string]string{
		"X-Request-Id": util.NewReqID(),
		"Connection":   "close",
	}

	r := bufio.NewReader(c)
	req, err := http10.ParseRequest(r)
	if err != nil {
		writeResult(c, resp.BadReq("bad_request", err.Error()), trace)
		return
	}

	var result resp.Result
	path, _ := http10.SplitTarget(req.Target)
	switch {
	case req.Method != "GET":
		result = resp.NotFound("not_found", "unsupported method")
	case path != "/status":
		result = resp.NotFound("not_found", "unknown route")
	default:
		result = s.statusResult()
	}
	writeResult(c, result, trace)
}

// statusResult builds the Result the router-era handlers would have
// returned, keeping /status on the same Result-shaped outcome contract as
// the rest of the admin surface.
func (s *Server) statusResult() resp.Result {
	idle, busy := s.pool.Occupancy()
	out := map[string]any{
		"pid":                os.Getpid(),
		"uptime_ms":          time.Since(s.startedAt).Milliseconds(),
		"started_at":         s.startedAt.UTC().Format(time.RFC3339Nano),
		"connections":        atomic.LoadUint64(&s.connCount),
		"active_emergencies": s.dispatch.ActiveCount(),
		"intents_pending":    s.itable.Size(),
		"twins":              map[string]int{"idle": idle, "busy": busy},
		"bus":                s.bus.Snapshot(),
	}
	b, _ := json.Marshal(out)
	return resp.JSONOK(string(b))
}

// writeResult renders a resp.Result over the HTTP/1.0 wire, the same
// translation step the original router/server pair performed for every
// handler's return value.
func writeResult(c net.Conn, r resp.Result, trace map[string]string) {
	headers := trace
	for k, v := range r.Headers {
		headers[k] = v
	}
	if r.Err != nil {
		http10.WriteErrorJSON(c, r.Status, r.Err.Code, r.Err.Detail, headers)
		return
	}
	if r.JSON {
		http10.WriteJSONH(c, r.Status, r.Body, headers)
		return
	}
	http10.WritePlainH(c, r.Status, r.Body, headers)
}
