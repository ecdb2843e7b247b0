// Package ident derives bucket keys from positional rows.
//
// A row is classified by the first non-empty document field found while
// walking the schema's documents in priority order. The key combines that
// document (tagged with its kind label unless it is the top-priority kind)
// with the sanitized name, and is cut to a maximum rune length so it can be
// used directly as a file name stem.
//
// Column semantics come only from the Schema; header text is never consulted.
package ident
