/*
Package blob stores user files on local disk with metadata in SQLite.

Blobs live under <root>/<user>/<ulid>-<name>.zst and are compressed with
zstd at rest. Each user has a byte quota; CheckQuota runs before any write
and a denied upload leaves storage untouched.

Downloads go through HMAC signed URLs that expire after an hour.
*/
package blob
