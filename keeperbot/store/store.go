package store

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store provides database access for the keeper bot.
type Store struct {
	conn   *DB
	db     *gorm.DB
	logger zerolog.Logger
}

func NewStore(db *DB, logger zerolog.Logger) *Store {
	return &Store{
		conn:   db,
		db:     db.Gorm(),
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// LastEventID is the id of the newest mirrored event, or nil when nothing
// has been mirrored yet.
func (s *Store) LastEventID() (*uint64, error) {
	var record EventRecord
	err := s.db.Order("event_id DESC").Limit(1).Find(&record).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query last event")
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record.EventID, nil
}

// SaveEvents mirrors events in one transaction. Events already present are
// left untouched, so a batch can be replayed safely.
func (s *Store) SaveEvents(events []types.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	records := make([]EventRecord, 0, len(events))
	for _, e := range events {
		record, err := NewEventRecord(e)
		if err != nil {
			return 0, err
		}
		records = append(records, record)
	}

	var inserted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).Create(&records)
		inserted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to save %d events", len(events))
	}
	return int(inserted), nil
}

// EventsByVault lists a vault's mirrored events in chain order. A nil after
// starts at the first event; otherwise only events newer than after are
// returned.
func (s *Store) EventsByVault(vaultID uint64, after *uint64, limit int) ([]EventRecord, error) {
	var records []EventRecord
	query := s.db.Where("vault_id = ?", vaultID).Order("event_id ASC")
	if after != nil {
		query = query.Where("event_id > ?", *after)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to query events of vault %d", vaultID)
	}
	return records, nil
}

// CountEventsByType counts mirrored events per event type.
func (s *Store) CountEventsByType() (map[string]int64, error) {
	var rows []struct {
		Type  string
		Count int64
	}
	if err := s.db.Model(&EventRecord{}).Select("type, count(*) as count").Group("type").Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count events")
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

// SaveSnapshot inserts or replaces the snapshot of snap.VaultID.
func (s *Store) SaveSnapshot(snap *VaultSnapshot) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vault_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "owner", "label", "status", "swap_denom", "receive_denom", "balance", "swapped",
			"received", "average_price", "dca_plus", "escrowed", "performance", "observed_at",
		}),
	}).Create(snap).Error
	if err != nil {
		return errors.Wrapf(err, "failed to save snapshot of vault %d", snap.VaultID)
	}
	return nil
}

func (s *Store) Snapshot(vaultID uint64) (*VaultSnapshot, error) {
	var snap VaultSnapshot
	err := s.db.Where("vault_id = ?", vaultID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "vault %d", vaultID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query snapshot of vault %d", vaultID)
	}
	return &snap, nil
}

// SnapshotsByOwner lists an owner's vault snapshots by vault id.
func (s *Store) SnapshotsByOwner(owner string) ([]VaultSnapshot, error) {
	var snaps []VaultSnapshot
	if err := s.db.Where("owner = ?", owner).Order("vault_id ASC").Find(&snaps).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to query snapshots of %s", owner)
	}
	return snaps, nil
}

func (s *Store) RecordSweep(run *SweepRun) error {
	if err := s.db.Create(run).Error; err != nil {
		return errors.Wrapf(err, "failed to record sweep %s", run.RunID)
	}
	return nil
}

// RecentSweeps returns the newest sweeps first.
func (s *Store) RecentSweeps(limit int) ([]SweepRun, error) {
	var runs []SweepRun
	query := s.db.Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query sweeps")
	}
	return runs, nil
}

// PruneSweeps hard-deletes sweeps whose block time is before cutoff.
func (s *Store) PruneSweeps(cutoff time.Time) (int64, error) {
	result := s.db.Unscoped().Where("block_time < ?", cutoff).Delete(&SweepRun{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to prune sweeps")
	}
	if result.RowsAffected > 0 {
		s.logger.Debug().Int64("deleted", result.RowsAffected).Time("cutoff", cutoff).Msg("pruned sweep history")
	}
	return result.RowsAffected, nil
}

// Compact checkpoints the WAL after large deletes.
func (s *Store) Compact() {
	if err := s.conn.CheckpointWAL(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to checkpoint WAL")
	}
}
