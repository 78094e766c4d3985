// sensa-listen captures utterances from the local microphone and prints the
// recognized command for each one.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-sensesafe/internal/app"
	"github.com/teslashibe/go-sensesafe/internal/config"
	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/internal/log"
)

func main() {
	envFile := flag.String("env-file", "", "Path to .env file (default .env)")
	device := flag.String("device", "", "ALSA capture device (overrides AUDIO_DEVICE)")
	lang := flag.String("lang", "", "Recognition language (default TARGET_LANGUAGE)")
	once := flag.Bool("once", false, "Exit after one utterance")
	logLevel := flag.String("log-level", "", "Log level (overrides LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load(config.Overrides{EnvFile: *envFile, Device: *device, LogLevel: *logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, httpc.New(0), logger)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	rec := a.Recorder()
	enc := json.NewEncoder(os.Stdout)

	fmt.Fprintln(os.Stderr, "Listening. Say a command; Ctrl+C to stop.")
	for ctx.Err() == nil {
		reply := a.Assistant.Listen(ctx, rec, *lang)
		if ctx.Err() != nil {
			return
		}
		if err := enc.Encode(reply); err != nil {
			logger.Error("write reply", "error", err)
			os.Exit(1)
		}
		if *once {
			return
		}
	}
}
