package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/campus-city/internal/engine"
)

// ErrNoSnapshot is returned when no snapshot has been saved yet.
var ErrNoSnapshot = errors.New("persistence: no snapshot")

const latestSnapshotID = "latest"

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// SaveSnapshot stores a compressed full-state snapshot, replacing the
// previous one. Snapshots complement the custom-entity tables: custom
// entities are the durable contract, the snapshot is a fast-resume cache
// that a schema change may invalidate.
func (db *DB) SaveSnapshot(state *engine.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	blob := encoder.EncodeAll(raw, nil)

	_, err = db.conn.Exec(
		`INSERT INTO snapshots (id, created_at, blob) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, blob = excluded.blob`,
		latestSnapshotID, time.Now().UTC().Format(time.RFC3339), blob)
	return err
}

// LoadSnapshot restores the latest snapshot. The caller must re-attach
// runtime-only pieces (the spawner) before handing the state to a store.
func (db *DB) LoadSnapshot() (*engine.State, error) {
	var blob []byte
	err := db.conn.Get(&blob, "SELECT blob FROM snapshots WHERE id = ?", latestSnapshotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	raw, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var state engine.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &state, nil
}
