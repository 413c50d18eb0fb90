package ingress

import (
	"bufio"
	"net"
	"strings"

	"dispatchsim/internal/bus"
	"dispatchsim/internal/logging"
)

// ServeNetSink accepts newline-delimited frames on addr and feeds each one
// into b, exactly as the original's POSIX message queue fed main.c's
// mq_receive loop. This is the Go substitute for mq_open(O_WRONLY): since
// the in-memory bus is per-process, cmd/emitter (or any external producer)
// talks to dispatchd over this small TCP listener instead of a shared
// kernel queue. One line per frame, "<type> <x> <y> <unix_ts>".
func ServeNetSink(addr string, b bus.Bus, log *logging.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	tag := log.Named("netsink")
	tag.Event("MESSAGE_QUEUE", "ingest socket listening on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go serveConn(conn, b, tag)
	}
}

func serveConn(c net.Conn, b bus.Bus, tag *logging.Logger) {
	defer c.Close()
	sc := bufio.NewScanner(c)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := b.Send(line); err != nil {
			tag.Warn("MESSAGE_QUEUE", "dropped frame from %s: %v", c.RemoteAddr(), err)
		}
	}
}
