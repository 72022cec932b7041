package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/x/highload"
)

func cmdKeyFromSeed(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a private key file from a hex encoded 32 byte seed.

This command fails if the private key file already exists.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use HLWALLET_PRIV_KEY environment variable to set it.")
		seedFl = flHex(fl, "seed", "", "Hex encoded seed.")
	)
	fl.Parse(args)

	if len(*seedFl) != crypto.SeedSize {
		return fmt.Errorf("seed must be %d bytes, got %d", crypto.SeedSize, len(*seedFl))
	}
	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	key, err := crypto.PrivKeyEd25519FromSeed(*seedFl)
	if err != nil {
		return fmt.Errorf("cannot create key: %s", err)
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(key); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	_, err = fmt.Fprintln(output, hex.EncodeToString(key.PublicKey()))
	return err
}

func cmdAddress(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address of a wallet owned by your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use HLWALLET_PRIV_KEY environment variable to set it.")
		walletID = flWalletID(fl)
	)
	fl.Parse(args)

	key, err := readKey(*keyPathFl)
	if err != nil {
		return err
	}
	state, err := highload.NewDeploymentState(walletID(), key.PublicKey())
	if err != nil {
		return fmt.Errorf("invalid wallet: %s", err)
	}
	return printIdentity(output, state)
}

func printIdentity(output io.Writer, state *highload.DeploymentState) error {
	addr, err := state.Address()
	if err != nil {
		return fmt.Errorf("cannot compute address: %s", err)
	}
	_, err = fmt.Fprintf(output, "address:    %s\nwallet id:  %d\npublic key: %s\n",
		addr, state.WalletID, hex.EncodeToString(state.PublicKey))
	return err
}
