package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"workstream/pkg/logger"
	"workstream/pkg/models"
	"workstream/pkg/security"
)

const snapshotKey = "workspace:snapshot"
const checkpointPrefix = "checkpoint:"

// Store persists the workspace snapshot as a single blob in a Pebble DB.
// It implements state.Persister.
type Store struct {
	db     *pebble.DB
	path   string
	sealer *security.Sealer
}

// Open opens (or creates) the Pebble database at path. sealer may be nil,
// in which case snapshots are stored in the clear.
func Open(path string, sealer *security.Sealer) (*Store, error) {
	logger.Log.Info("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Log.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return &Store{db: db, path: path, sealer: sealer}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	logger.Log.Info("pebble_closed")
	return err
}

// Ready reports whether the store is open.
func (s *Store) Ready() bool { return s != nil && s.db != nil }

// Load returns the persisted snapshot. found is false when no snapshot has
// ever been saved.
func (s *Store) Load() (*models.Snapshot, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("store not opened")
	}
	v, closer, err := s.db.Get([]byte(snapshotKey))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		loadFailures.Inc()
		return nil, false, err
	}
	data := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	if s.sealer != nil {
		data, err = s.sealer.Open(data)
		if err != nil {
			loadFailures.Inc()
			return nil, false, fmt.Errorf("unseal snapshot: %w", err)
		}
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		loadFailures.Inc()
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	loads.Inc()
	return &snap, true, nil
}

// Save replaces the persisted snapshot. The write is synced before Save
// returns; the most recent successful write wins.
func (s *Store) Save(snap *models.Snapshot) error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if s.sealer != nil {
		data = s.sealer.Seal(data)
	}
	if err := s.db.Set([]byte(snapshotKey), data, pebble.Sync); err != nil {
		saveFailures.Inc()
		logger.Log.Error("save_snapshot_failed", zap.Error(err))
		return err
	}
	saves.Inc()
	snapshotBytes.Set(float64(len(data)))
	return nil
}

// Checkpoint copies the current snapshot blob under a timestamped key in the
// checkpoint namespace. Used by the maintenance job.
func (s *Store) Checkpoint() (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("store not opened")
	}
	v, closer, err := s.db.Get([]byte(snapshotKey))
	if err == pebble.ErrNotFound {
		return "", fmt.Errorf("no snapshot to checkpoint")
	}
	if err != nil {
		return "", err
	}
	data := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	key := fmt.Sprintf("%s%020d", checkpointPrefix, time.Now().UTC().UnixNano())
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return "", err
	}
	checkpoints.Inc()
	logger.Log.Info("snapshot_checkpointed", zap.String("key", key))
	return key, nil
}

// ListCheckpoints returns checkpoint keys in chronological order.
func (s *Store) ListCheckpoints() ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.SeekGE([]byte(checkpointPrefix)); iter.Valid(); iter.Next() {
		k := string(iter.Key())
		if !strings.HasPrefix(k, checkpointPrefix) {
			break
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out, iter.Error()
}

// PruneCheckpoints deletes all but the newest keep checkpoints and returns
// how many were removed.
func (s *Store) PruneCheckpoints(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	keys, err := s.ListCheckpoints()
	if err != nil {
		return 0, err
	}
	pruned := 0
	for len(keys) > keep {
		if err := s.db.Delete([]byte(keys[0]), pebble.Sync); err != nil {
			return pruned, err
		}
		keys = keys[1:]
		pruned++
	}
	return pruned, nil
}
