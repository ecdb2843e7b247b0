// Package ingest groups submitted rows into entity buckets and merges each
// bucket into its persistent workbook.
//
// A submission flows through three stages:
//
//  1. Group partitions rows by bucket key, keeping first-seen key order and
//     submission order inside each bucket.
//  2. Merger opens <output>/<key>.xlsx, or seeds a new workbook from the
//     template on first write, and appends the bucket's rows after the last
//     existing row.
//  3. The workbook is renamed over the target file.
//
// Buckets are processed one at a time, in group order. Entity files are
// shared across submissions and, unless KeyLocks are configured, are not
// protected against concurrent writers: two submissions touching the same
// key may interleave and the last save wins.
//
// Merges are additive. Submitting the same rows twice appends them twice.
package ingest
