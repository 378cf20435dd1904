// Package resource loads the item metadata shipped with the engine resources.
package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// ItemIndexFile is the location of the item index relative to the resources
// directory, as shipped in MAA releases.
var ItemIndexFile = filepath.Join("resource", "item_index.json")

// flatIndexFile is accepted when resourcesDir already points at the
// resource folder itself.
const flatIndexFile = "item_index.json"

// ErrItemIndexMissing is returned when the resources directory has no item index.
var ErrItemIndexMissing = errors.New("item index not found")

// Item describes one game item.
type Item struct {
	ClassifyType string `json:"classifyType"`
	Description  string `json:"description,omitempty"`
	Icon         string `json:"icon"`
	Name         string `json:"name"`
	SortID       int    `json:"sortId"`
	Usage        string `json:"usage,omitempty"`
}

// Index maps item ids to their metadata. It is safe for concurrent use and can
// be reloaded in place.
type Index struct {
	mu    sync.RWMutex
	items map[string]Item
	path  string
}

// IndexPath returns where the item index lives under resourcesDir.
func IndexPath(resourcesDir string) string {
	return filepath.Join(resourcesDir, ItemIndexFile)
}

// locateIndex returns IndexPath(resourcesDir), or the flat layout when only
// that one exists.
func locateIndex(fs afero.Fs, resourcesDir string) string {
	primary := IndexPath(resourcesDir)
	if ok, _ := afero.Exists(fs, primary); ok {
		return primary
	}
	flat := filepath.Join(resourcesDir, flatIndexFile)
	if ok, _ := afero.Exists(fs, flat); ok {
		return flat
	}
	return primary
}

// LoadIndex reads the item index under resourcesDir. Both
// <resourcesDir>/resource/item_index.json and <resourcesDir>/item_index.json
// are accepted; the first wins when both exist.
func LoadIndex(fs afero.Fs, resourcesDir string) (*Index, error) {
	idx := &Index{path: locateIndex(fs, resourcesDir)}
	if err := idx.Reload(fs); err != nil {
		return nil, err
	}
	return idx, nil
}

// Path returns the file the index was loaded from.
func (i *Index) Path() string {
	return i.path
}

// Reload re-reads the index file. On error the previous contents are kept.
func (i *Index) Reload(fs afero.Fs) error {
	data, err := afero.ReadFile(fs, i.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrItemIndexMissing, i.path)
		}
		return fmt.Errorf("read item index: %w", err)
	}

	var items map[string]Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse item index %s: %w", i.path, err)
	}

	i.mu.Lock()
	i.items = items
	i.mu.Unlock()
	return nil
}

// Lookup returns the item with the given id.
func (i *Index) Lookup(id string) (Item, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	item, ok := i.items[id]
	return item, ok
}

// Name returns the display name of id, or id itself when unknown.
func (i *Index) Name(id string) string {
	if item, ok := i.Lookup(id); ok && item.Name != "" {
		return item.Name
	}
	return id
}

// Len returns the number of items.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.items)
}
