// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/folderize/cmd/folderize/cli"
	"github.com/bureau-foundation/folderize/lib/clock"
	"github.com/bureau-foundation/folderize/lib/engine"
	"github.com/bureau-foundation/folderize/lib/filewatch"
	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/scheduler"
)

// minimumRetry bounds how often a navigation blocked by a running
// pass is retried.
const minimumRetry = 50 * time.Millisecond

type watchOptions struct {
	documentOptions
	metricsListen string
}

func watchCommand(stdout io.Writer) *cli.Command {
	var options watchOptions
	const usage = "folderize watch <file> [flags]"

	return &cli.Command{
		Name:    "watch",
		Summary: "Keep an HTML document grouped as it changes",
		Description: `Group the item list of a local HTML document, then keep it grouped.

When the file is rewritten with different content it is reloaded and
regrouped from scratch, as after a page navigation. SIGHUP forces the
same reload. Output is rewritten after every pass.

With metrics.listen set (or --metrics-listen), pass counts, page
fetches and folder gauges are served in Prometheus format on
/metrics.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			options.register(flagSet)
			flagSet.StringVar(&options.metricsListen, "metrics-listen", "", "serve /metrics on this address (overrides metrics.listen)")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Regroup a page every time it is saved",
				Command:     "folderize watch actions.html -o grouped.html",
			},
			{
				Description: "Watch with metrics on localhost:9102",
				Command:     "folderize watch actions.html -o grouped.html --metrics-listen 127.0.0.1:9102",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, usage); err != nil {
				return err
			}
			return runWatch(ctx, args[0], &options, stdout)
		},
	}
}

func runWatch(ctx context.Context, path string, options *watchOptions, stdout io.Writer) error {
	cfg, level, err := options.load()
	if err != nil {
		return err
	}
	if err := validateDocumentFormat(options.format); err != nil {
		return err
	}
	if isRemote(path) {
		return cli.Validation("watch needs a local file, not a URL").
			WithHint("Use 'folderize html " + path + "' for a one-shot run.")
	}
	if err := checkDistinctOutput(path, options.output); err != nil {
		return err
	}
	listen := cfg.Metrics.Listen
	if options.metricsListen != "" {
		listen = options.metricsListen
	}
	logger := cli.NewCommandLogger(level).With("command", "watch", "document", path)

	fetcher := newFetcher(cfg)
	body, base, err := readDocument(ctx, path, fetcher)
	if err != nil {
		return err
	}
	if options.baseURL != "" {
		base = options.baseURL
	}

	watcher, err := filewatch.New(filewatch.Config{Path: path, Logger: logger})
	if err != nil {
		return cli.Internal("watching %s: %w", path, err)
	}
	defer watcher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(registry)

	var pipeline *documentPipeline
	reload := func(ctx context.Context, trigger scheduler.Trigger) error {
		if trigger != scheduler.TriggerNavigation {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reloading %s: %w", path, err)
		}
		return pipeline.document.Replace(bytes.NewReader(data))
	}
	pipeline, err = newDocumentPipeline(cfg, bytes.NewReader(body), base, fetcher, reload, metrics, logger)
	if err != nil {
		return err
	}

	loop := &watchLoop{
		pipeline: pipeline,
		options:  &options.documentOptions,
		stdout:   stdout,
		clock:    clock.Real(),
		retry:    max(cfg.DebounceDuration(), minimumRetry),
		passDone: make(chan struct{}, 1),
	}
	passScheduler, err := scheduler.New(ctx, scheduler.Config{
		Debounce: cfg.DebounceDuration(),
		Logger:   logger,
		Pass:     loop.pass,
	})
	if err != nil {
		return cli.Internal("creating scheduler: %w", err)
	}
	defer passScheduler.Close()
	loop.scheduler = passScheduler

	cancelObserver := pipeline.document.Observe(func(mutation livelist.Mutation) {
		if mutation.AddsItems() {
			passScheduler.Notify()
		}
	})
	defer cancelObserver()

	// The first pass is a navigation: rows merged from later pages
	// arrive while it runs and do not schedule a second pass.
	if err := loop.navigate(ctx); err != nil {
		return nil
	}

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, unix.SIGHUP)
	defer signal.Stop(hangup)

	var listener net.Listener
	if listen != "" {
		listener, err = net.Listen("tcp", listen)
		if err != nil {
			return cli.Validation("metrics listen address %q: %w", listen, err)
		}
		logger.Info("serving metrics", "address", listener.Addr().String())
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return watcher.Run(groupCtx)
	})
	if listener != nil {
		group.Go(func() error {
			return serveMetrics(groupCtx, listener, registry)
		})
	}
	group.Go(func() error {
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-watcher.Changes():
				logger.Info("document changed; reloading")
			case <-hangup:
				logger.Info("SIGHUP received; reloading")
			}
			if err := loop.navigate(groupCtx); err != nil {
				return nil
			}
		}
	})

	err = group.Wait()
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return cli.Internal("watching %s: %w", path, err)
	}
	return nil
}

// watchLoop runs passes for the watch command and writes the output
// after each one.
type watchLoop struct {
	pipeline  *documentPipeline
	scheduler *scheduler.Scheduler
	options   *documentOptions
	stdout    io.Writer
	clock     clock.Clock
	retry     time.Duration
	passDone  chan struct{}
}

// pass is the scheduler's PassFunc.
func (loop *watchLoop) pass(ctx context.Context, trigger scheduler.Trigger) error {
	_, err := loop.runPass(ctx, trigger)
	return err
}

// runPass runs one engine pass, writes the output and signals passDone.
func (loop *watchLoop) runPass(ctx context.Context, trigger scheduler.Trigger) (engine.Report, error) {
	defer func() {
		select {
		case loop.passDone <- struct{}{}:
		default:
		}
	}()
	report, err := loop.pipeline.engine.Pass(ctx, trigger)
	if err != nil {
		return report, err
	}
	if err := loop.pipeline.write(loop.options, report, loop.stdout); err != nil {
		return report, err
	}
	return report, nil
}

// navigate runs a navigation pass. A navigation that arrives while a
// pass is running is not lost: it is retried when that pass finishes,
// or after the retry interval, until it runs or ctx ends.
func (loop *watchLoop) navigate(ctx context.Context) error {
	for !loop.scheduler.Navigate() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-loop.passDone:
		case <-loop.clock.After(loop.retry):
		}
	}
	return nil
}

// serveMetrics serves registry on /metrics until ctx is cancelled.
func serveMetrics(ctx context.Context, listener net.Listener, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	err := server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// checkDistinctOutput rejects writing the output over the watched
// file, which would regroup its own output forever.
func checkDistinctOutput(input, output string) error {
	if output == "" || output == "-" {
		return nil
	}
	inputAbsolute, err := filepath.Abs(input)
	if err != nil {
		return cli.Validation("resolving %s: %w", input, err)
	}
	outputAbsolute, err := filepath.Abs(output)
	if err != nil {
		return cli.Validation("resolving %s: %w", output, err)
	}
	if inputAbsolute == outputAbsolute {
		return cli.Validation("--output must differ from the watched file")
	}
	return nil
}
