// Package store defines the file-store collaborator consumed by the diff
// engine, plus an in-memory and a hackpadfs-backed implementation.
//
// Paths are forward-slash separated relative strings; the diff engine hands
// them over already stripped of the unified-diff a/ and b/ prefixes.
package store

import "context"

// FileStore is the minimal surface the diff engine needs from its host.
// WriteFile must create intermediate directories as needed.
type FileStore interface {
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path, content string) error
}
