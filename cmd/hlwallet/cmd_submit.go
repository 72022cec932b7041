package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/x/highload"
)

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a signed batch from the input and deliver it to the wallet. On success
all released transfers are printed, one per line.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Wallet database directory. You can use HLWALLET_HOME environment variable to set it.")
		nowFl      = flNow(fl, "now", "Unix time of the delivery. Current time when not set.")
		logLevelFl = fl.String("log-level", defaultLogLevel(), "Logging level (debug, info, error or none).")
	)
	fl.Parse(args)

	logger, err := newLogger(os.Stderr, *logLevelFl)
	if err != nil {
		flagDie("%s", err)
	}
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read batch: %s", err)
	}
	if len(raw) == 0 {
		return errors.New("no input data")
	}

	db, err := openStore(*homeFl)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := blockContext(nowFl.Time(), logger)
	var released []highload.MessageEntry
	err = withCommit(db, func(kv hlwallet.CacheableKVStore) error {
		released, err = highload.NewWallet(nil).HandleExternal(ctx, kv, raw)
		return err
	})
	if err != nil {
		return fmt.Errorf("batch rejected: %s", err)
	}

	for _, e := range released {
		if _, err := fmt.Fprintf(output, "%d\t%s\t%s\n", e.Index, e.Mode, hex.EncodeToString(e.Message)); err != nil {
			return err
		}
	}
	return nil
}
