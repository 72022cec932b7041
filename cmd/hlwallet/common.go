package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/store/iavl"
	"github.com/iov-one/hlwallet/x/highload"
	"github.com/tendermint/tendermint/libs/log"
)

// storeName is the name of the database kept in the home directory.
const storeName = "hlwallet"

// openStore opens the wallet database kept in given home directory. The
// directory is created if it does not exist.
func openStore(home string) (iavl.CommitStore, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return iavl.CommitStore{}, fmt.Errorf("cannot create home directory: %s", err)
	}
	db := iavl.NewCommitStore(home, storeName)
	if err := db.LoadLatestVersion(); err != nil {
		db.Close()
		return iavl.CommitStore{}, fmt.Errorf("cannot load database: %s", err)
	}
	return db, nil
}

// withCommit runs given function with a cache of the store. Changes are
// committed only if the function succeeds.
func withCommit(db iavl.CommitStore, fn func(hlwallet.CacheableKVStore) error) error {
	cache := db.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return fmt.Errorf("cannot write cache: %s", err)
	}
	if _, err := db.Commit(); err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	return nil
}

// readKey loads the private key file. The file contains the raw ed25519
// private key.
func readKey(path string) (crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	if len(raw) != crypto.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	return crypto.PrivateKey(raw), nil
}

// newLogger returns a logger writing to stderr that is printing only
// messages of given level or more important.
func newLogger(w io.Writer, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", err)
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, opt).With("module", "hlwallet"), nil
}

// blockContext returns a context carrying given time and logger.
func blockContext(now time.Time, logger log.Logger) context.Context {
	ctx := hlwallet.WithBlockTime(context.Background(), now)
	ctx = hlwallet.WithLogger(ctx, logger)
	return hlwallet.WithLogInfo(ctx, "now", now.Unix())
}

// flNow returns a value that is the current time unless overwritten by
// a unix timestamp given as the command line argument.
func flNow(fl *flag.FlagSet, name, usage string) *unixTimeFlag {
	var t unixTimeFlag
	fl.Var(&t, name, usage)
	return &t
}

type unixTimeFlag struct {
	t hlwallet.UnixTime
}

func (u *unixTimeFlag) String() string {
	if u == nil || u.t.IsZero() {
		return ""
	}
	return strconv.FormatInt(int64(u.t), 10)
}

func (u *unixTimeFlag) Set(raw string) error {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid unix time %q", raw)
	}
	u.t = hlwallet.UnixTime(n)
	return nil
}

// Time returns the flag value or the current time if not set.
func (u *unixTimeFlag) Time() time.Time {
	if u.t.IsZero() {
		return time.Now()
	}
	return u.t.Time()
}

// parseQueryID accepts a query id in its decimal form or as a
// "deadline:seqno" pair.
func parseQueryID(raw string) (highload.QueryID, error) {
	if chunks := strings.SplitN(raw, ":", 2); len(chunks) == 2 {
		deadline, err := strconv.ParseUint(chunks[0], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid deadline: %s", err)
		}
		seqno, err := strconv.ParseUint(chunks[1], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid seqno: %s", err)
		}
		return highload.PackQueryID(uint32(deadline), uint32(seqno)), nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid query id: %s", err)
	}
	return highload.QueryID(n), nil
}
