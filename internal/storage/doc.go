// Package storage persists episodes: run metadata plus a per-step trace.
// [FileStore] writes one directory per run; [SQLiteStore] keeps
// everything in a single database file.
package storage
