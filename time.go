package hlwallet

import (
	"math"
	"time"

	"github.com/iov-one/hlwallet/errors"
)

// UnixTime is a point in time with seconds precision, the resolution of the
// wallet clock.
type UnixTime int64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// IsZero returns true if this time represents a zero value.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add returns the time shifted by d. Fractions of a second are dropped.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// Uint32 returns this time as the 32 bit unsigned seconds counter used by the
// wallet protocol. It fails if the value cannot be represented.
func (t UnixTime) Uint32() (uint32, error) {
	if t < 0 {
		return 0, errors.Wrap(errors.ErrInvalidState, "time before epoch")
	}
	if t > math.MaxUint32 {
		return 0, errors.Wrap(errors.ErrOverflow, "time does not fit in 32 bits")
	}
	return uint32(t), nil
}

// AsUnixTime converts given Time structure into its UNIX time representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrInvalidState, "negative value")
	}
	return nil
}

// String returns the UTC time.Time representation.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}
