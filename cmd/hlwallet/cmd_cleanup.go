package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/x/highload"
)

func cmdCleanup(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Send a single cleanup request to the wallet. Up to -limit query ids whose
grace window has passed are forgotten. The acknowledgment body is printed
together with the number of forgotten query ids.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Wallet database directory. You can use HLWALLET_HOME environment variable to set it.")
		limitFl       = fl.Uint("limit", highload.DefaultUnlockLimit, "Maximum number of query ids to forget.")
		correlationFl = fl.Uint64("correlation", 0, "Correlation id echoed back in the acknowledgment.")
		nowFl         = flNow(fl, "now", "Unix time of the delivery. Current time when not set.")
		logLevelFl    = fl.String("log-level", defaultLogLevel(), "Logging level (debug, info, error or none).")
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
	body, err := highload.CleanupQueueMsg{
		Limit:         limit,
		CorrelationID: *correlationFl,
	}.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize request: %s", err)
	}

	db, err := openStore(*homeFl)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := blockContext(nowFl.Time(), logger)
	var res *highload.InternalResult
	err = withCommit(db, func(kv hlwallet.CacheableKVStore) error {
		res, err = highload.NewWallet(nil).HandleInternal(ctx, kv, body)
		return err
	})
	if err != nil {
		return fmt.Errorf("cleanup failed: %s", err)
	}
	_, err = fmt.Fprintf(output, "reply:     %s\nforgotten: %d\n", hex.EncodeToString(res.Reply), len(res.Forgotten))
	return err
}
