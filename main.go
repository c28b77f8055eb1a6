package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/horgh/ft-ircd/internal/ircd"
)

func main() {
	log.SetFlags(0)
	logger := log.New(os.Stderr, "", 0)

	args := getArgs()
	if args == nil {
		os.Exit(1)
	}

	srv := ircd.New(ircd.Config{
		Port:     args.Port,
		Password: args.Password,
	}, logger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Printf("shutting down")
		srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		logger.Printf("fatal: %s", err)
		os.Exit(1)
	}

	logger.Printf("server shutdown cleanly")
}
