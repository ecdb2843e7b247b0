// Package journal provides an optional SQLite ledger of applied merges.
//
// Each successful bucket merge appends one row: submission ID, bucket key,
// file name and the number of rows appended. The merge engine only writes
// to the journal; entity workbooks stay the sole state it reads. The journal
// answers "which submissions touched this file" after the fact.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//
// Reads are ordered by seq, the insertion order of merges.
package journal
