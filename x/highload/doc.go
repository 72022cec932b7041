/*
Package highload implements the replay protection of a high throughput
wallet.

A wallet owner signs batches of outgoing transfers. Every batch carries a
64 bit query id that packs the batch deadline (high 32 bits) and a sequence
number (low 32 bits). The wallet accepts a batch only once and only before
its deadline. Accepted ids are kept in a ledger ordered by query id, so that
a bounded cleanup can forget ids whose deadline passed long enough ago.

Each query id is in one of three states:

  Unprocessed  never seen by this wallet
  Processed    accepted, its transfers were released for execution
  Forgotten    accepted earlier and removed from the ledger by cleanup

Forgotten ids are not stored. A missing id at or below the cleanup
watermark is reported as forgotten, any other missing id as unprocessed.
*/
package highload
