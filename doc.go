/*

Package hlwallet defines interfaces used throughout the wallet, such as:
storage, persistent models, context values and time.

The replay protection protocol itself lives in x/highload. Storage
implementations live in store and store/iavl. Look into this package to get a
brief overview of the interfaces that glue those together.

*/

package hlwallet
