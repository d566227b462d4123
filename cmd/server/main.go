package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-qr-portal/internal/config"
	"github.com/jrsteele09/go-qr-portal/qrapi"
	"github.com/jrsteele09/go-qr-portal/server"
	"github.com/jrsteele09/go-qr-portal/sessionctx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	config.LoadDotEnv()
	if err := parseFlags(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

// parseFlags lets the command line override the environment.
func parseFlags(args []string) error {
	flagSet := pflag.NewFlagSet("qr-portal", pflag.ContinueOnError)
	port := flagSet.String("port", "", "port to listen on (overrides "+config.PortEnvVar+")")
	apiURL := flagSet.String("api-url", "", "base URL of the Auth/QR API (overrides "+config.APIURLEnvVar+")")
	env := flagSet.String("env", "", "environment name, DEV logs to the console (overrides "+config.EnvEnvVar+")")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	for name, value := range map[string]string{
		config.PortEnvVar:   *port,
		config.APIURLEnvVar: *apiURL,
		config.EnvEnvVar:    *env,
	} {
		if value == "" {
			continue
		}
		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := sessionctx.NewInMemoryRepo()
	go sessionctx.RunJanitor(ctx, sessions, sessionSweepInterval)

	api := qrapi.New(c.GetAPIURL(), c.GetSessionCookieName(), c.GetAPITimeout())
	handler, err := server.New(c, api, sessions)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("api", c.GetAPIURL()).Str("env", c.GetEnv()).Msg("Starting portal")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
