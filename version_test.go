package hlwallet

import (
	"testing"

	"github.com/iov-one/hlwallet/hltest/assert"
)

func TestVersion(t *testing.T) {
	defer func(c string) { GitCommit = c }(GitCommit)

	GitCommit = ""
	assert.Equal(t, "v0.3.0", Version())

	GitCommit = "12345678"
	assert.Equal(t, "v0.3.0 12345678", Version())
}
