package main

import (
	"chat-client/client"
	"chat-client/errors"
	"chat-client/internal"
	"chat-client/storage"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the calling shell.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	if len(args) == 0 {
		printUsage()
		return exitConfig, nil
	}
	name, args := args[0], args[1:]
	command, ok := commands[name]
	if !ok {
		printUsage()
		return exitConfig, fmt.Errorf("unknown command %q", name)
	}

	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Credential store (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Debug("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Run the command
	app := &app{
		config: config,
		log:    log,
		store:  storage.NewCredentialStore(db, log),
		api: client.NewAPI(log, client.Config{
			APIURL:   config.ChatAPIURL,
			RoomsURL: config.ChatRoomsURL,
			Timeout:  config.HTTPTimeout,
		}),
		in:  os.Stdin,
		out: os.Stdout,
	}
	err = command(ctx, app, args)
	return exitCode(err), err
}

// exitCode reports rejected form input like a configuration error, since
// the user has to change the command line to get past it.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.IsValidation(err):
		return exitConfig
	default:
		return exitRuntime
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: chat <command> [flags]

Commands:
  login     --email <email> [--password <password>]
  register  --username <name> --email <email> [--password <password>]
  logout
  room      --name <name>        create a private room
  chat      [--room <name>] [--room-id <id>] [--public]

While chatting:
  /room <name>   switch room
  /public        switch to the public room
  /quit          leave
`)
}
