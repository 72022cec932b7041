package main

import (
	"flag"
	"fmt"
	"io"
	"math"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/x/highload"
)

func cmdTransfer(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a signed batch of outgoing transfers and write it to the output.
Every -msg flag adds one hex encoded transfer message to the batch.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use HLWALLET_PRIV_KEY environment variable to set it.")
		walletID  = flWalletID(fl)
		msgsFl    = flHexList(fl, "msg", "Hex encoded transfer message. Can be used many times.")
		seqnoFl   = fl.Int64("seqno", -1, "Sequence number. Random when not set.")
		modeFl    = fl.Int("mode", int(highload.DefaultSendMode), "Send mode applied to all messages.")
		timeoutFl = fl.Duration("timeout", highload.MaxTimeout, "How long the batch is valid. Longer values are clamped.")
		nowFl     = flNow(fl, "now", "Unix time the batch is created at. Current time when not set.")
	)
	fl.Parse(args)

	if len(*msgsFl) == 0 {
		flagDie("at least one -msg is required")
	}
	if *modeFl < 0 || *modeFl > math.MaxUint8 {
		flagDie("invalid send mode %d", *modeFl)
	}
	key, err := readKey(*keyPathFl)
	if err != nil {
		return err
	}

	opts := highload.TransferOptions{
		Signer:   key,
		WalletID: walletID(),
		Messages: *msgsFl,
		Now:      hlwallet.AsUnixTime(nowFl.Time()),
		Timeout:  *timeoutFl,
	}
	if *seqnoFl >= 0 {
		if *seqnoFl > math.MaxUint32 {
			flagDie("sequence number must fit in 32 bits")
		}
		seqno := uint32(*seqnoFl)
		opts.Seqno = &seqno
	}
	mode := highload.SendMode(*modeFl)
	opts.SendMode = &mode

	batch, err := highload.CreateTransfer(opts)
	if err != nil {
		return fmt.Errorf("cannot create transfer: %s", err)
	}
	raw, err := batch.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize batch: %s", err)
	}
	_, err = output.Write(raw)
	return err
}
