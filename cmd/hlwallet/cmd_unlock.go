package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/hlwallet/x/highload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func cmdUnlock(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Keep sending cleanup requests to the wallet until interrupted. A failed
request does not stop the process, the next one is sent after the usual
interval.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Wallet database directory. You can use HLWALLET_HOME environment variable to set it.")
		intervalFl = fl.Duration("interval", highload.DefaultUnlockInterval, "Time between cleanup requests.")
		limitFl    = fl.Uint("limit", highload.DefaultUnlockLimit, "Maximum number of query ids forgotten by a single request.")
		metricsFl  = fl.String("metrics", "", "Address to serve prometheus metrics on, for example :9100. Disabled when empty.")
		logLevelFl = fl.String("log-level", defaultLogLevel(), "Logging level (debug, info, error or none).")
	)
	fl.Parse(args)

	logger, err := newLogger(os.Stderr, *logLevelFl)
	if err != nil {
		flagDie("%s", err)
	}

	limit, err := flUint32("limit", *limitFl)
	if err != nil {
		return err
	}

	db, err := openStore(*homeFl)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	metrics, err := highload.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("cannot register metrics: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		select {
		case <-sigc:
			cancel()
		case <-ctx.Done():
		}
	}()

	if *metricsFl != "" {
		srv := &http.Server{
			Addr:    *metricsFl,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	sender := &highload.LocalCleanupSender{
		Wallet: highload.NewWallet(metrics),
		Store:  db,
		Logger: logger,
	}
	u := highload.NewUnlocker(sender, *intervalFl, limit, logger)
	if err := u.Run(ctx); err != context.Canceled {
		return err
	}
	_, err = fmt.Fprintln(output, "unlocker stopped")
	return err
}
