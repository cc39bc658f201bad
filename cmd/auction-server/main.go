// Command auction-server runs the auction registry behind the HTTP surface
// and, optionally, the one-request-per-connection protocol on TCP or vsock.
// Registry state is loaded from and periodically saved to a CBOR snapshot.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cloudx-io/auctionledger/core"
	"github.com/cloudx-io/auctionledger/ledger"
	"github.com/cloudx-io/auctionledger/receipt"
	"github.com/cloudx-io/auctionledger/server"
	"github.com/cloudx-io/auctionledger/store"
)

func main() {
	var (
		httpAddr         = flag.String("http-addr", ":8080", "HTTP listen address")
		connAddr         = flag.String("conn-addr", "", "TCP listen address for the connection protocol (empty to disable)")
		vsockPort        = flag.Uint("vsock-port", 0, "vsock port for the connection protocol (0 to disable)")
		snapshotPath     = flag.String("snapshot", "auctions.snapshot", "registry snapshot file path")
		snapshotInterval = flag.Duration("snapshot-interval", time.Minute, "interval between registry snapshots")
		maxWorkers       = flag.Int("max-workers", 16, "connection worker pool size")
		fund             = flag.String("fund", "", "comma-separated principal=amount pairs to seed the ledger")
	)
	flag.Parse()

	if v, ok := envInt("AUCTION_MAX_WORKERS"); ok {
		*maxWorkers = v
	}

	st, err := store.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to load snapshot: %v", err)
	}
	log.Printf("INFO: Registry snapshot loaded from %s", *snapshotPath)

	led := ledger.New()
	if err := seedLedger(led, *fund); err != nil {
		log.Fatalf("ERROR: Invalid -fund value: %v", err)
	}

	hub := server.NewHub()
	registry, err := core.NewRegistry(st, led, nil, hub)
	if err != nil {
		log.Fatalf("ERROR: Failed to create registry: %v", err)
	}

	signer, err := receipt.NewSigner()
	if err != nil {
		log.Fatalf("ERROR: Failed to create receipt signer: %v", err)
	}
	log.Printf("INFO: Receipt signer initialized")

	srv, err := server.New(registry, signer, led)
	if err != nil {
		log.Fatalf("ERROR: Failed to create server: %v", err)
	}

	if *connAddr != "" || *vsockPort != 0 {
		connSrv, err := server.NewConnServer(srv, *maxWorkers)
		if err != nil {
			log.Fatalf("ERROR: Failed to create connection server: %v", err)
		}
		if *connAddr != "" {
			l, err := net.Listen("tcp", *connAddr)
			if err != nil {
				log.Fatalf("ERROR: Failed to listen on %s: %v", *connAddr, err)
			}
			go func() {
				if err := connSrv.Serve(l); err != nil {
					log.Printf("ERROR: Connection server stopped: %v", err)
				}
			}()
		}
		if *vsockPort != 0 {
			l, err := server.ListenVsock(uint32(*vsockPort))
			if err != nil {
				log.Fatalf("ERROR: Failed to listen on vsock port %d: %v", *vsockPort, err)
			}
			go func() {
				if err := connSrv.Serve(l); err != nil {
					log.Printf("ERROR: Connection server stopped: %v", err)
				}
			}()
		}
	}

	httpSrv, err := server.NewHTTPServer(server.HTTPServerConfig{
		ListenAddr:               *httpAddr,
		ReadTimeout:              10 * time.Second,
		WriteTimeout:             10 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
	}, srv, hub)
	if err != nil {
		log.Fatalf("ERROR: Failed to create HTTP server: %v", err)
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(*snapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := st.SaveSnapshot(*snapshotPath); err != nil {
					log.Printf("ERROR: Failed to save snapshot: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil {
			log.Fatalf("ERROR: HTTP server stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Printf("INFO: Shutting down")
	close(stop)
	if err := httpSrv.Shutdown(); err != nil {
		log.Printf("ERROR: HTTP shutdown failed: %v", err)
	}
	if err := st.SaveSnapshot(*snapshotPath); err != nil {
		log.Printf("ERROR: Failed to save final snapshot: %v", err)
	}
	log.Printf("INFO: Final snapshot saved to %s", *snapshotPath)
}

// seedLedger parses "alice=1000,bob=500" and funds the named principals.
func seedLedger(led *ledger.Ledger, pairs string) error {
	if pairs == "" {
		return nil
	}
	for _, pair := range strings.Split(pairs, ",") {
		name, amountStr, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("expected principal=amount, got %q", pair)
		}
		amount, err := strconv.ParseUint(amountStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount in %q: %w", pair, err)
		}
		led.Fund(core.Principal(name), amount)
		log.Printf("INFO: Funded %s with %d", name, amount)
	}
	return nil
}

// envInt reads an optional integer environment variable.
func envInt(key string) (int, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("ERROR: Invalid value for %s: %s (must be a valid integer)", key, value)
	}
	log.Printf("INFO: Using %s=%d from environment", key, intValue)
	return intValue, true
}
