package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/iov-one/hlwallet/x/highload"
)

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *flagbyte {
	var b flagbyte
	if defaultVal != "" {
		if err := b.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&b, name, usage)
	return &b
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// flHexList returns a list of hex encoded values. Each use of the flag on
// the command line appends another value.
func flHexList(fl *flag.FlagSet, name, usage string) *hexList {
	var l hexList
	fl.Var(&l, name, usage)
	return &l
}

type hexList [][]byte

func (l hexList) String() string {
	chunks := make([]string, len(l))
	for i, b := range l {
		chunks[i] = hex.EncodeToString(b)
	}
	return strings.Join(chunks, ",")
}

func (l *hexList) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*l = append(*l, val)
	return nil
}

// flWalletID registers flags that select the wallet id. An explicit id takes
// precedence over the workchain default.
func flWalletID(fl *flag.FlagSet) func() uint32 {
	var (
		idFl        = fl.Uint("wallet-id", 0, "Wallet id. When not set, the default id of the workchain is used.")
		workchainFl = fl.Int("workchain", 0, "Workchain the wallet is deployed on. Used to compute the default wallet id.")
	)
	return func() uint32 {
		if *idFl != 0 {
			return uint32(*idFl)
		}
		return highload.DefaultWalletID(int32(*workchainFl))
	}
}

// flUint32 returns the value of an unsigned flag if it can be represented
// on 32 bits.
func flUint32(name string, val uint) (uint32, error) {
	if uint64(val) > math.MaxUint32 {
		return 0, fmt.Errorf("-%s must fit in 32 bits, got %d", name, val)
	}
	return uint32(val), nil
}

// flagDie terminates the program when an invalid flag value was given.
func flagDie(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(2)
}
