package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Cache stores synthesized clips on disk, addressed by source text and
// language code.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating speech cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Key returns the entry name for text spoken in language code.
func Key(text, code string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]) + "_" + code
}

// Path returns the clip file for key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}

// Lookup returns the clip path for key if it is cached.
func (c *Cache) Lookup(key string) (string, bool) {
	path := c.Path(key)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", false
	}
	return path, true
}

// Store writes audio under key and returns its path. The clip becomes
// visible only once fully written.
func (c *Cache) Store(key string, audio []byte) (string, error) {
	tmp, err := c.write(key+".*.tmp", audio)
	if err != nil {
		return "", err
	}
	path := c.Path(key)
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("storing clip: %w", err)
	}
	return path, nil
}

// Scratch writes audio to a one-off file that no key resolves to. The caller
// removes it.
func (c *Cache) Scratch(audio []byte) (string, error) {
	return c.write("scratch-*.wav", audio)
}

func (c *Cache) write(pattern string, audio []byte) (string, error) {
	f, err := os.CreateTemp(c.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating clip: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing clip: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing clip: %w", err)
	}
	return f.Name(), nil
}

// Invalidate removes the entry for key. Missing entries are not an error.
func (c *Cache) Invalidate(key string) error {
	if err := os.Remove(c.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalidating clip: %w", err)
	}
	return nil
}
