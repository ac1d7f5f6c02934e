// Package cache stores JSON documents under a directory until they expire.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/log"
)

// Cache is a directory of documents that expire TTL after they were written.
type Cache struct {
	Dir string
	TTL time.Duration
}

// New creates a cache in dir.
func New(dir string, ttl time.Duration) Cache {
	return Cache{Dir: dir, TTL: ttl}
}

// Key derives a file name from parts, ignoring case and spaces.
func Key(parts ...string) string {
	normalized := strings.ToLower(strings.ReplaceAll(strings.Join(parts, "\x00"), " ", ""))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// Read decodes the document stored under key into target. It reports false when the
// document is missing, expired or unreadable.
func (c Cache) Read(key string, target any) bool {
	path := filepath.Join(c.Dir, key)

	info, err := filesystem.API().Stat(path)
	if err != nil || c.expired(info) {
		return false
	}

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		log.Warnf("cache: %s: %v", key, err)
		return false
	}
	return true
}

// Write stores data under key, replacing the previous document in one rename.
func (c Cache) Write(key string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	api := filesystem.API()
	if err := api.MkdirAll(c.Dir, os.ModePerm); err != nil {
		return err
	}

	path := filepath.Join(c.Dir, key)
	if err := api.WriteFile(path+".tmp", encoded, 0o644); err != nil {
		return err
	}
	return api.Rename(path+".tmp", path)
}

// CollectGarbage removes expired documents.
func (c Cache) CollectGarbage() error {
	api := filesystem.API()
	return api.Walk(c.Dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if c.expired(info) {
			log.Debugf("cache: removing %s", path)
			_ = api.Remove(path)
		}
		return nil
	})
}

func (c Cache) expired(info fs.FileInfo) bool {
	return time.Since(info.ModTime()) > c.TTL
}
