// Package storage defines the file-system abstraction for the source vault
// and the generated site tree.
package storage

// Provider is the interface for file operations under a fixed root.
type Provider interface {
	// List returns the names of .md files directly inside dir (relative to
	// the root), sorted ascending. Subdirectories are not descended into.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
}
