// Package logging renders every event in this system as
// "[<unix_ts>] [<id_or_module>] [<event_kind>] <message>" — the exact shape
// logger.c's log_event()/log_event_id() write — while using
// github.com/hashicorp/go-hclog underneath for leveling, named
// sub-loggers, and an injectable sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// lineSink is a custom hclog.SinkAdapter that writes the pre-rendered
// "[<ts>] [<name>] [<kind>] <msg>" line straight to the underlying writer,
// bypassing hclog's own "timestamp [LEVEL]  name: " framing entirely. Event
// and Warn hand it the fully composed line as msg, so Accept has nothing
// left to do but append a newline.
type lineSink struct {
	w io.Writer
}

func (s *lineSink) Accept(_ string, _ hclog.Level, msg string, _ ...interface{}) {
	fmt.Fprintln(s.w, msg)
}

// Logger is the structured, named logger every subsystem receives via
// Named(). It wraps hclog.Logger but pins the on-disk line shape.
type Logger struct {
	hc   hclog.Logger
	name string
}

// New builds the root logger, writing event lines to w (use an
// os.OpenFile'd append-mode file for a persistent log, or os.Stdout for
// console-only runs). The base hclog logger's own output is discarded;
// lineSink is the only thing that ever touches w, so the emitted line is
// exactly what Event/Warn composed, never hclog's own prefix.
func New(w io.Writer, name string) *Logger {
	hc := hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:       name,
		Output:     io.Discard,
		Level:      hclog.Info,
		JSONFormat: false,
	})
	hc.RegisterSink(&lineSink{w: w})
	return &Logger{hc: hc, name: name}
}

// Named returns a sub-logger whose name supplies the "[<id_or_module>]"
// field — e.g. log.Named("intent"), or an emergency's "Emergency 7" tag.
// The registered sink is shared with the parent, so the sub-logger writes
// to the same underlying destination.
func (l *Logger) Named(name string) *Logger {
	return &Logger{hc: l.hc.Named(name), name: name}
}

// Event writes one line: "[<unix_ts>] [<id_or_module>] [<event_kind>] <msg>".
func (l *Logger) Event(kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%d] [%s] [%s] %s", time.Now().Unix(), l.name, kind, msg)
	// kind and id_or_module are already baked into line, so hclog's Info is
	// used purely to reach the registered sink at the right level, never
	// for its own key=value rendering.
	l.hc.Info(line)
}

// Warn writes an event line at hclog's Warn level so it surfaces on any
// secondary sink configured at Warn+.
func (l *Logger) Warn(kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%d] [%s] [%s] %s", time.Now().Unix(), l.name, kind, msg)
	l.hc.Warn(line)
}

// Discard is a logger that writes nowhere, for tests that don't care about
// log output.
func Discard() *Logger {
	return New(io.Discard, "test")
}

// OpenAppend opens (creating if needed) a log file in append mode, matching
// init_log()'s O_CREAT|O_WRONLY|O_APPEND.
func OpenAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
