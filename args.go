package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Args are the command line arguments: a listen port and a shared
// password, the fixed external surface section 6 specifies. No flags, no
// config file, no environment variables.
type Args struct {
	Port     int
	Password string
}

func getArgs() *Args {
	flag.Usage = func() { printUsage(nil) }
	flag.Parse()

	rest := flag.Args()
	if len(rest) != 2 {
		printUsage(fmt.Errorf("expected exactly 2 arguments, got %d", len(rest)))
		return nil
	}

	port, err := strconv.Atoi(rest[0])
	if err != nil || port < 1 || port > 65535 {
		printUsage(fmt.Errorf("port must be an integer between 1 and 65535"))
		return nil
	}

	password := rest[1]
	if password == "" {
		printUsage(fmt.Errorf("password must not be empty"))
		return nil
	}

	return &Args{
		Port:     port,
		Password: password,
	}
}

func printUsage(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s <port> <password>\n", os.Args[0])
}
