// Command emitter submits emergency records to a running dispatchd, mirroring
// Client/client.c's two modes: a single shot, or a file of records replayed
// with per-line delays. Where the original opened a POSIX message queue by
// name, emitter dials dispatchd's TCP ingest socket instead.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatchsim/internal/bus"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Uso:\n")
	fmt.Fprintf(os.Stderr, "  %s <tipo> <x> <y> <ritardo>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -f <file>\n", os.Args[0])
}

func main() {
	addr := os.Getenv("DISPATCHSIM_INGEST_ADDR")
	if addr == "" {
		addr = "127.0.0.1:9090"
	}

	args := os.Args[1:]
	switch {
	case len(args) == 4:
		x, err1 := strconv.Atoi(args[1])
		y, err2 := strconv.Atoi(args[2])
		delay, err3 := strconv.Atoi(args[3])
		if err1 != nil || err2 != nil || err3 != nil {
			usage()
			os.Exit(1)
		}
		if err := sendOne(addr, args[0], x, y, delay); err != nil {
			fmt.Fprintf(os.Stderr, "emitter: %v\n", err)
			os.Exit(1)
		}

	case len(args) == 2 && args[0] == "-f":
		if err := sendFile(addr, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "emitter: %v\n", err)
			os.Exit(1)
		}

	default:
		usage()
		os.Exit(1)
	}
}

// sendEmergency dials addr and writes one newline-delimited frame, the Go
// analogue of send_emergency's mq_open/mq_send/mq_close sequence.
func sendEmergency(addr, frame string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	_, err = fmt.Fprintf(conn, "%s\n", frame)
	return err
}

func sendOne(addr, kind string, x, y, delay int) error {
	time.Sleep(time.Duration(delay) * time.Second)
	return sendEmergency(addr, bus.Encode(kind, x, y, time.Now()))
}

// sendFile replays "<type> <x> <y> <delay>" records from path, one per
// line, sleeping <delay> seconds before sending each — matching the
// original's -f mode. Malformed lines are skipped, not fatal.
func sendFile(addr, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 {
			continue
		}
		kind := fields[0]
		x, err1 := strconv.Atoi(fields[1])
		y, err2 := strconv.Atoi(fields[2])
		delay, err3 := strconv.Atoi(fields[3])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if err := sendOne(addr, kind, x, y, delay); err != nil {
			return err
		}
	}
	return sc.Err()
}
