package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/x/highload"
)

func cmdDeploy(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Deploy a new wallet owned by your private key into the home directory
database. A database can hold a single wallet only.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Wallet database directory. You can use HLWALLET_HOME environment variable to set it.")
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
	raw, err := state.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize wallet state: %s", err)
	}

	db, err := openStore(*homeFl)
	if err != nil {
		return err
	}
	defer db.Close()

	err = withCommit(db, func(kv hlwallet.CacheableKVStore) error {
		_, err := highload.NewWallet(nil).Deploy(kv, raw)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot deploy: %s", err)
	}
	return printIdentity(output, state)
}
