package main

import (
	"fmt"
	"io"

	"github.com/iov-one/hlwallet"
)

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, hlwallet.Version())
	return err
}
