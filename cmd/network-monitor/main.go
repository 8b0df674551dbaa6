package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transitkit/network-monitor/config"
	"github.com/transitkit/network-monitor/internal/logging"
	"github.com/transitkit/network-monitor/orchestrator"
	"github.com/transitkit/network-monitor/transport"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: ./config.yml)")
	insecureUpstream := flag.Bool("insecure-upstream", false, "dial the upstream STOMP feed over plain TCP instead of TLS")
	flag.Parse()

	logging.Init(slog.LevelInfo)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("err", err))
		os.Exit(1)
	}

	upstream, err := dialUpstream(*cfg, *insecureUpstream)
	if err != nil {
		slog.Error("failed to dial upstream STOMP feed", slog.Any("err", err))
		os.Exit(1)
	}

	monitor := orchestrator.NewMonitor(*cfg, orchestrator.FileLayoutFetcher{Path: cfg.NetworkLayoutFile}, upstream)

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.QuietRouteIP, cfg.QuietRoutePort))
	if err != nil {
		slog.Error("failed to start quiet-route listener", slog.Any("err", err))
		os.Exit(1)
	}
	go acceptLoop(listener, monitor)

	ctx, cancel := context.WithCancel(context.Background())
	go handleShutdown(cancel)

	if err := monitor.Run(ctx); err != nil {
		slog.Error("orchestrator exited with error", slog.Any("err", err))
		os.Exit(1)
	}
}

func dialUpstream(cfg config.AppConfig, insecure bool) (transport.Stream, error) {
	addr := fmt.Sprintf("%s:%d", cfg.NetworkEventsURL, cfg.NetworkEventsPort)
	if insecure {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}
		return transport.NewNetStream(conn), nil
	}

	pool := x509.NewCertPool()
	pem, err := os.ReadFile(cfg.CaCertFile)
	if err != nil {
		return nil, fmt.Errorf("read ca cert file: %w", err)
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("ca cert file %s contained no usable certificates", cfg.CaCertFile)
	}
	conn, err := tls.Dial("tcp", addr, &tls.Config{RootCAs: pool})
	if err != nil {
		return nil, err
	}
	return transport.NewNetStream(conn), nil
}

func acceptLoop(listener net.Listener, monitor *orchestrator.Monitor) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			slog.Error("quiet-route listener accept failed", slog.Any("err", err))
			return
		}
		monitor.AcceptDownstream(transport.NewNetStream(conn))
	}
}

func handleShutdown(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	slog.Info("shutdown signal received")
	cancel()
	time.Sleep(100 * time.Millisecond)
}
