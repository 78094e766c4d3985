// sensa-scan runs exit detection on image files and prints the results as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-sensesafe/internal/app"
	"github.com/teslashibe/go-sensesafe/internal/config"
	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/internal/log"
	"github.com/teslashibe/go-sensesafe/pkg/detection"
	"github.com/teslashibe/go-sensesafe/pkg/imaging"
)

func main() {
	envFile := flag.String("env-file", "", "Path to .env file (default .env)")
	lang := flag.String("lang", "", "Translate the summary to this language")
	nv21 := flag.String("nv21", "", "Treat inputs as raw NV21 frames of size WxH, e.g. 640x480")
	status := flag.Bool("status", false, "Print detector configuration and exit")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] image...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(config.Overrides{EnvFile: *envFile, LogLevel: *logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, httpc.New(0), log.L())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *status {
		enc.Encode(a.Detector.Status())
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var w, h int
	if *nv21 != "" {
		if _, err := fmt.Sscanf(*nv21, "%dx%d", &w, &h); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -nv21 size %q\n", *nv21)
			os.Exit(2)
		}
	}

	failed := false
	for _, path := range flag.Args() {
		img, err := load(path, w, h)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		res := a.Detector.Detect(ctx, img)
		if *lang != "" {
			res.Summary = a.Translator.Translate(ctx, res.Summary, *lang)
		}
		enc.Encode(fileResult{File: path, Result: res, Groups: res.Groups()})
	}
	if failed {
		os.Exit(1)
	}
}

type fileResult struct {
	File string `json:"file"`
	detection.Result
	Groups detection.Groups `json:"groups"`
}

func load(path string, w, h int) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if w > 0 {
		return imaging.FromNV21(data, w, h)
	}
	img, _, err := imaging.Decode(data)
	return img, err
}
