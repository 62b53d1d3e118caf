// Package client is the programmatic facade over the dashboard API with an
// offline fallback: reads served from the local cache are explicitly
// labeled stale and never written back to the server.
package client

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/corpdesk/corpdesk/internal/models"
)

// Cache is a JSON-file snapshot of the last successful reads. It is a
// read-only fallback, not a second source of truth.
type Cache struct {
	Registrations []models.Registration `json:"registrations"`
	Packages      []models.Package      `json:"packages"`
	BankDetails   []models.BankDetail   `json:"bankDetails"`
	SavedAt       time.Time             `json:"savedAt"`

	path string
	mu   sync.Mutex
}

// NewCache returns a cache backed by the given file path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Load reads the snapshot from disk. A missing file leaves the cache
// empty.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(c)
}

// Save writes the snapshot to disk.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SavedAt = time.Now()
	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(c)
}

// SetRegistrations replaces the cached registration list.
func (c *Cache) SetRegistrations(regs []models.Registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Registrations = regs
}

// SetPackages replaces the cached package list.
func (c *Cache) SetPackages(pkgs []models.Package) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Packages = pkgs
}

// SetBankDetails replaces the cached bank detail list.
func (c *Cache) SetBankDetails(details []models.BankDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.BankDetails = details
}
