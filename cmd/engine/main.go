// Command engine is the process entrypoint: it wires configuration,
// the app registry, the Reporter, the Docker-backed service bridge,
// and the interpreter behind one HTTP handler, then serves until
// signalled to stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jayvdb/platform-engine/app"
	"github.com/jayvdb/platform-engine/config"
	"github.com/jayvdb/platform-engine/dockerbackend"
	"github.com/jayvdb/platform-engine/lexicon"
	"github.com/jayvdb/platform-engine/metrics"
	"github.com/jayvdb/platform-engine/reporting"
	"github.com/jayvdb/platform-engine/service"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:0", "listen address")
	configPath := flag.String("config", "", "path to the Reporter/agent config YAML file")
	release := flag.String("release", "dev", "release identifier reported to Slack/Sentry")
	shutdownTimeout := flag.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: config: %v\n", err)
		os.Exit(1)
	}

	reporter := reporting.New(cfg.ReporterConfig(), *release)
	registry := app.NewRegistry()

	specs := dockerbackend.NewContainerSpecRegistry()
	backend := dockerbackend.NewBackend(specs)
	sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
	bridge := service.NewBridge(backend, sink)
	interp := lexicon.New(bridge)

	handler := app.NewHandler(registry, reporter)
	srv := &Server{
		Registry:    registry,
		Specs:       specs,
		Interpreter: interp,
		Failures:    handler,
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: listen: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "engine listening on %s\n", ln.Addr())

	httpSrv := &http.Server{Handler: srv}

	serveErr := make(chan error, 1)
	go func() { serveErr <- httpSrv.Serve(ln) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Fprintf(os.Stderr, "engine: received %s, shutting down\n", sig)
	case err := <-serveErr:
		fmt.Fprintf(os.Stderr, "engine: serve error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer cancel()
	httpSrv.Shutdown(ctx)
}
