package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	playthroughcmd "github.com/louisbranch/killchain/internal/cmd/playthrough"
)

func main() {
	cfg, err := playthroughcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[PLAYTHROUGH] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := playthroughcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("playthrough failed: %v", err)
	}
}
