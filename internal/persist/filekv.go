package persist

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileKV keeps every key in a single JSON object on disk. Each write
// replaces the file atomically. A missing or corrupt file reads as empty.
type FileKV struct {
	mu     sync.Mutex
	path   string
	quota  int
	logger *slog.Logger
	data   []byte
	loaded bool
}

// FileOption configures a FileKV.
type FileOption func(*FileKV)

// WithFileQuota limits the size of the JSON document in bytes.
func WithFileQuota(n int) FileOption {
	return func(f *FileKV) {
		f.quota = n
	}
}

// WithFileLogger sets the logger used to report a corrupt store file.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(f *FileKV) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFileKV creates a store backed by the JSON file at path. The file is
// read lazily on first access.
func NewFileKV(path string, opts ...FileOption) *FileKV {
	f := &FileKV{
		path:   path,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the backing file path.
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) loadLocked() ([]byte, error) {
	if f.loaded {
		return f.data, nil
	}

	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return nil, &OperationError{Op: "load", Key: f.path, Err: err}
	case len(bytes.TrimSpace(data)) > 0 && !gjson.ValidBytes(data):
		f.logger.Warn("store file is not valid JSON, starting empty", "path", f.path)
		data = nil
	case len(data) > 0 && !gjson.ParseBytes(data).IsObject():
		f.logger.Warn("store file is not a JSON object, starting empty", "path", f.path)
		data = nil
	}

	f.data = data
	f.loaded = true
	return f.data, nil
}

// Get returns the value stored under key.
func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.loadLocked()
	if err != nil {
		return "", false, err
	}
	res := gjson.GetBytes(data, gjson.Escape(key))
	if !res.Exists() {
		return "", false, nil
	}
	if res.Type == gjson.String {
		return res.String(), true, nil
	}
	return res.Raw, true, nil
}

// Set stores value under key and rewrites the file.
func (f *FileKV) Set(key, value string) error {
	return f.mutate("set", key, func(data []byte) ([]byte, error) {
		return sjson.SetBytes(data, gjson.Escape(key), value)
	})
}

// Delete removes key and rewrites the file.
func (f *FileKV) Delete(key string) error {
	return f.mutate("delete", key, func(data []byte) ([]byte, error) {
		if !gjson.GetBytes(data, gjson.Escape(key)).Exists() {
			return data, nil
		}
		return sjson.DeleteBytes(data, gjson.Escape(key))
	})
}

func (f *FileKV) mutate(op, key string, fn func([]byte) ([]byte, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.loadLocked()
	if err != nil {
		return err
	}

	next, err := fn(bytes.Clone(data))
	if err != nil {
		return &OperationError{Op: op, Key: key, Err: err}
	}
	if f.quota > 0 && len(next) > f.quota {
		return &OperationError{Op: op, Key: key, Err: ErrQuotaExceeded}
	}
	if err := atomicWriteFile(f.path, next, 0o644); err != nil {
		return &OperationError{Op: op, Key: key, Err: err}
	}

	f.data = next
	return nil
}

// Reload discards the cached document so the next access rereads the file.
func (f *FileKV) Reload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = false
	f.data = nil
}

// String implements fmt.Stringer.
func (f *FileKV) String() string {
	return fmt.Sprintf("FileKV(%s)", f.path)
}
