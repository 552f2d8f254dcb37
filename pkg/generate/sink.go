package generate

import (
	"os"
	"path/filepath"
)

// Sink is the write-only file boundary. Generators never read back what they
// write.
type Sink interface {
	Exists(path string) bool
	WriteFile(path string, data []byte) error
}

// Disk writes to the local filesystem.
type Disk struct{}

// Exists implements Sink.
func (Disk) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFile implements Sink.
func (Disk) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MemorySink records writes in memory. Tests assert against Files.
type MemorySink struct {
	Files map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{Files: make(map[string][]byte)}
}

// Exists implements Sink.
func (m *MemorySink) Exists(path string) bool {
	_, ok := m.Files[path]
	return ok
}

// WriteFile implements Sink.
func (m *MemorySink) WriteFile(path string, data []byte) error {
	m.Files[path] = data
	return nil
}
