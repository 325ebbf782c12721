// Command actionledger runs the action tracking HTTP service.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tracklane/actionledger/internal/cmd/actionledger"
)

func main() {
	log.SetPrefix("[ACTIONLEDGER] ")
	log.SetFlags(log.LstdFlags | log.LUTC)

	fs := flag.NewFlagSet("actionledger", flag.ExitOnError)
	cfg, err := actionledger.ParseConfig(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := actionledger.Run(ctx, cfg); err != nil {
		log.Fatalf("run: %v", err)
	}
}
