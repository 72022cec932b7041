package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/hlwallet/x/highload"
)

func cmdProcessed(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the status of a query id: -1 processed, 0 unprocessed, 1 forgotten.
Query id is either a decimal number or a "deadline:seqno" pair.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Wallet database directory. You can use HLWALLET_HOME environment variable to set it.")
		queryFl = fl.String("query", "", "Query id.")
	)
	fl.Parse(args)

	if *queryFl == "" {
		flagDie("-query is required")
	}
	id, err := parseQueryID(*queryFl)
	if err != nil {
		flagDie("%s", err)
	}

	db, err := openStore(*homeFl)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := highload.NewWallet(nil).Processed(db.CacheWrap(), id)
	if err != nil {
		return fmt.Errorf("cannot read status: %s", err)
	}
	_, err = fmt.Fprintf(output, "%d\t%s\n", status, highload.QueryState(status))
	return err
}
