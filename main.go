package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auction "auction-site/internal/auctionService"
	"auction-site/internal/identity"
	"auction-site/internal/server"
	"auction-site/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		utils.Fatal("Auction server failed", map[string]any{"error": err.Error()})
	}
}

// run starts the server and blocks until it has shut down. Every resource it
// opens is released before it returns.
func run(arguments []string) error {
	args, err := ParseArgs(arguments)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := args.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := utils.SetLevel(args.LogLevel); err != nil {
		utils.Warn("Unknown log level, using info", map[string]any{"log_level": args.LogLevel})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, args)
	if err != nil {
		return fmt.Errorf("open %s store: %w", args.Store, err)
	}
	defer closeStore()

	auctionSvc := auction.NewAuctionService(repo, args.Auction)
	identitySvc := identity.NewIdentityService(repo, args.Identity)

	srv := &http.Server{
		Handler:           server.SetupRouter(auctionSvc, identitySvc, identitySvc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", args.ServerURL)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", args.ServerURL, err)
	}

	utils.Info("Starting auction server", map[string]any{"addr": ln.Addr().String(), "store": args.Store})
	if err := serve(ctx, srv, ln); err != nil {
		return err
	}
	utils.Info("Server stopped", nil)
	return nil
}

// serve runs srv on ln until ctx is cancelled, then drains in-flight requests
// before returning.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	// Serve returns as soon as Shutdown closes the listener
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
