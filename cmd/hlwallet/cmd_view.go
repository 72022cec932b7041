package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/hlwallet/x/highload"
)

func cmdView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display a signed batch summary. The signature is not verified.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read batch: %s", err)
	}
	if len(raw) == 0 {
		return errors.New("no input data")
	}
	batch, err := highload.UnmarshalBatch(raw)
	if err != nil {
		return fmt.Errorf("cannot deserialize batch: %s", err)
	}

	pretty, err := json.MarshalIndent(newBatchView(batch), "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = output.Write(pretty)
	return err
}

type batchView struct {
	WalletID  uint32      `json:"wallet_id"`
	QueryID   uint64      `json:"query_id"`
	Deadline  uint32      `json:"deadline"`
	Seqno     uint32      `json:"seqno"`
	Signature string      `json:"signature"`
	Entries   []entryView `json:"entries"`
}

type entryView struct {
	Index   int16  `json:"index"`
	Mode    uint8  `json:"mode"`
	Message string `json:"message"`
}

func newBatchView(b *highload.SignedBatch) batchView {
	deadline, seqno := b.QueryID.Unpack()
	v := batchView{
		WalletID:  b.WalletID,
		QueryID:   uint64(b.QueryID),
		Deadline:  deadline,
		Seqno:     seqno,
		Signature: hex.EncodeToString(b.Signature),
		Entries:   make([]entryView, len(b.Entries)),
	}
	for i, e := range b.Entries {
		v.Entries[i] = entryView{
			Index:   e.Index,
			Mode:    uint8(e.Mode),
			Message: hex.EncodeToString(e.Message),
		}
	}
	return v
}
