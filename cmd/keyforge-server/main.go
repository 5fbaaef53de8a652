// Command keyforge-server runs the KeyForge key/value server.
//
// The server speaks a line-oriented text protocol (GET/PUT/UPDATE/DELETE)
// over TCP and logs all activity through the asynchronous logging pipeline
// configured in the YAML config file.
//
// Usage:
//
//	keyforge-server [flags]
//
// Flags:
//
//	-config string   Configuration file path (defaults apply when omitted)
//	-address string  Listen address, overrides the config file
//
// Examples:
//
//	# Start with defaults: colored console + in-memory sinks on :7904
//	keyforge-server
//
//	# Start with a config file
//	keyforge-server -config /etc/keyforge/server.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/SouradipPatra7904/KeyForge/pkg/config"
	"github.com/SouradipPatra7904/KeyForge/pkg/discovery"
	"github.com/SouradipPatra7904/KeyForge/pkg/server"
	"github.com/SouradipPatra7904/KeyForge/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	address := flag.String("address", "", "listen address, overrides the config file")
	flag.Parse()

	if err := run(*configPath, *address); err != nil {
		fmt.Fprintf(os.Stderr, "keyforge-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, address string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if address != "" {
		cfg.Address = address
	}

	pipe, closeSinks, err := cfg.BuildPipeline()
	if err != nil {
		return err
	}
	SetDefault(pipe)
	defer func() {
		pipe.Shutdown(true)
		closeSinks()
	}()

	srv, err := server.New(server.Config{
		Address:         cfg.Address,
		Store:           store.New(),
		Log:             pipe,
		AuthTokenHashes: cfg.Auth.TokenHashes,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(context.Background()); err != nil {
		return err
	}

	if cfg.Discovery.Enabled {
		announcer := discovery.NewAnnouncer()
		if err := announcer.Announce(cfg.Discovery.Instance, listenPort(srv.Addr())); err != nil {
			Default().Warn(fmt.Sprintf("mDNS announcement failed: %v", err))
		} else {
			defer announcer.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		Default().Info(fmt.Sprintf("received %s, shutting down", sig))
	case <-srv.ShutdownRequested():
		Default().Info("shutdown requested over the wire")
	}

	return srv.Stop()
}

func listenPort(addr net.Addr) int {
	if addr == nil {
		return server.DefaultPort
	}
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return server.DefaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return server.DefaultPort
	}
	return port
}
