// Command dispatchd is the emergency dispatch simulator's main process: it
// loads the grid/rescuer/emergency-type catalogs, wires the twin pool,
// intent table, and bus, then runs the ingress dispatcher until it
// receives SIGINT/SIGTERM.
package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"dispatchsim/internal/barrier"
	"dispatchsim/internal/bus"
	"dispatchsim/internal/config"
	"dispatchsim/internal/ingress"
	"dispatchsim/internal/intent"
	"dispatchsim/internal/logging"
	"dispatchsim/internal/status"
	"dispatchsim/internal/twinpool"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	logFile, err := logging.OpenAppend(getenv("DISPATCHSIM_LOG_FILE", "dispatch.log"))
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	root := logging.New(logFile, "dispatchsim")
	root.Event("FILE_PARSING", "starting dispatch simulator")

	grid, err := config.LoadGrid(getenv("DISPATCHSIM_GRID_CONFIG", "grid.yaml"))
	if err != nil {
		root.Event("FILE_PARSING", "error loading grid config: %v", err)
		log.Fatalf("load grid config: %v", err)
	}
	root.Event("FILE_PARSING", "%s", grid.Summary())

	rescuers, err := config.LoadRescuers(getenv("DISPATCHSIM_RESCUERS_CONFIG", "rescuers.yaml"))
	var warnings *multierror.Error
	if errors.As(err, &warnings) {
		root.Warn("FILE_PARSING", "rescuer catalog entries skipped: %v", err)
	} else if err != nil {
		root.Event("FILE_PARSING", "error loading rescuer catalog: %v", err)
		log.Fatalf("load rescuer catalog: %v", err)
	}
	root.Event("FILE_PARSING", "%s", rescuers.Summary())

	etypes, err := config.LoadEmergencyTypes(getenv("DISPATCHSIM_EMERGENCY_TYPES_CONFIG", "emergency_types.yaml"), rescuers)
	if errors.As(err, &warnings) {
		root.Warn("FILE_PARSING", "emergency type catalog entries skipped: %v", err)
	} else if err != nil {
		root.Event("FILE_PARSING", "error loading emergency type catalog: %v", err)
		log.Fatalf("load emergency type catalog: %v", err)
	}
	root.Event("FILE_PARSING", "%s", config.SummaryEmergencyTypes(etypes))

	pool := twinpool.New(rescuers.Twins)
	itable := intent.New()
	messageBus := bus.New(getenvInt("DISPATCHSIM_BUS_SLOTS", 16))
	root.Event("MESSAGE_QUEUE", "bus created with %d slots", getenvInt("DISPATCHSIM_BUS_SLOTS", 16))

	dispatcher := ingress.New(messageBus, pool, itable, etypes, grid, root, barrier.RealClock)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Run(stop)
	}()

	admin := status.New(pool, itable, messageBus, dispatcher)
	adminAddr := getenv("DISPATCHSIM_ADMIN_ADDR", ":8080")
	go func() {
		if err := admin.ListenAndServe(adminAddr); err != nil {
			root.Warn("ADMIN_SURFACE", "status server stopped: %v", err)
		}
	}()

	ingestAddr := getenv("DISPATCHSIM_INGEST_ADDR", ":9090")
	go func() {
		if err := ingress.ServeNetSink(ingestAddr, messageBus, root); err != nil {
			root.Warn("MESSAGE_QUEUE", "ingest socket stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	root.Event("SHUTDOWN", "termination signal received, draining in-flight emergencies")
	close(stop)
	<-done
	root.Event("SHUTDOWN", "cleanup complete, exiting")
}
