// Package persist reads and writes the whole task list as one stored snapshot.
package persist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/tickoff/internal/models"
	"github.com/starford/tickoff/internal/storage"
)

// Key is the storage key holding the snapshot.
const Key = "tasks"

// Gateway serializes task lists to a storage.Provider.
type Gateway struct {
	store  storage.Provider
	logger *slog.Logger
}

// New creates a Gateway. A nil logger falls back to slog.Default.
func New(store storage.Provider, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: store, logger: logger}
}

// Encode returns the stored form of tasks: a JSON array of models.Entry.
func Encode(tasks []models.Task) ([]byte, error) {
	entries := make([]models.Entry, len(tasks))
	for i, t := range tasks {
		entries[i] = t.Entry()
	}
	// Text is already entity-escaped; json must not escape & < > a second time.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("persist: marshal: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Checksum returns the hex SHA-256 of the stored form of tasks. It changes
// exactly when the snapshot would.
func Checksum(tasks []models.Task) (string, error) {
	data, err := Encode(tasks)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

// SaveAll overwrites the snapshot with tasks, in order.
func (g *Gateway) SaveAll(tasks []models.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := g.store.Set(Key, string(data)); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	return nil
}

// LoadAll reads the snapshot. An absent key or a payload that is not JSON at
// all yields an empty list; an array with malformed entries is an error.
func (g *Gateway) LoadAll() ([]models.Task, error) {
	raw, ok, err := g.store.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("persist: load: %w", err)
	}
	if !ok {
		return []models.Task{}, nil
	}

	var entries []models.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			g.logger.Warn("persist: unparsable snapshot, starting empty",
				slog.String("key", Key),
				slog.String("error", err.Error()))
			return []models.Task{}, nil
		}
		return nil, fmt.Errorf("persist: decode: %w", err)
	}

	tasks := make([]models.Task, len(entries))
	for i, e := range entries {
		tasks[i] = models.FromEntry(e)
	}
	return tasks, nil
}
