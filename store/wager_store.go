package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportsledger/ledger"
	"sportsledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WagerStore is the append-only record store for wager lifecycle events.
type WagerStore struct {
	db *gorm.DB
}

func NewWagerStore(db *gorm.DB) *WagerStore {
	return &WagerStore{db: db}
}

// GetActiveByTransactionID returns the active record of a transaction, or
// nil when the transaction is unknown.
func (s *WagerStore) GetActiveByTransactionID(ctx context.Context, transactionID string) (*models.WagerRecord, error) {
	var rec models.WagerRecord
	err := s.db.WithContext(ctx).
		Where("transaction_id = ? AND active = ?", transactionID, true).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store.GetActiveByTransactionID: %w", err)
	}
	return &rec, nil
}

// CountByPrefix counts the records of a transaction whose bet id was derived
// for prefix.
func (s *WagerStore) CountByPrefix(ctx context.Context, prefix ledger.Prefix, transactionID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.WagerRecord{}).
		Where("transaction_id = ? AND bet_id LIKE ?", transactionID, prefix.Pattern()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("store.CountByPrefix: %w", err)
	}
	return n, nil
}

// LatestSettlement returns the newest settled or resettled record of a
// transaction, active or not, or nil when it was never settled.
func (s *WagerStore) LatestSettlement(ctx context.Context, transactionID string) (*models.WagerRecord, error) {
	var rec models.WagerRecord
	err := s.db.WithContext(ctx).
		Where("transaction_id = ? AND flag IN ?", transactionID, []models.Flag{models.FlagSettled, models.FlagResettled}).
		Order("id DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store.LatestSettlement: %w", err)
	}
	return &rec, nil
}

// History lists every record of a transaction, oldest first.
func (s *WagerStore) History(ctx context.Context, transactionID string) ([]models.WagerRecord, error) {
	var recs []models.WagerRecord
	if err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store.History: %w", err)
	}
	return recs, nil
}

// Insert appends rec and, in the same transaction, deactivates supersede.
// Losing a race on either step yields ledger.ErrConflict and nothing is
// written.
func (s *WagerStore) Insert(ctx context.Context, rec *models.WagerRecord, supersede *models.WagerRecord) error {
	rec.Active = true
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if supersede != nil {
			res := tx.Model(&models.WagerRecord{}).
				Where("id = ? AND active = ?", supersede.ID, true).
				Update("active", false)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ledger.ErrConflict
			}
		}
		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ledger.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store.Insert: %w", err)
	}
	if supersede != nil {
		supersede.Active = false
	}
	return nil
}

// SumWaitingStakes totals the stakes of a player's unconfirmed wagers in
// one currency.
func (s *WagerStore) SumWaitingStakes(ctx context.Context, playerID, currency string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	row := s.db.WithContext(ctx).Model(&models.WagerRecord{}).
		Select("COALESCE(SUM(bet_amount), 0)").
		Where("player_id = ? AND currency = ? AND flag = ? AND active = ?",
			playerID, ledger.NormalizeCurrency(currency), models.FlagWaiting, true).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("store.SumWaitingStakes: %w", err)
	}
	return sum, nil
}

// ListRunningByBranch pages through the open wagers of a branch. An empty
// currency matches every currency.
func (s *WagerStore) ListRunningByBranch(ctx context.Context, branchCode, currency string, offset, limit int) ([]models.WagerRecord, int64, error) {
	scope := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.WagerRecord{}).
			Where("branch_code = ? AND active = ? AND flag IN ?", branchCode, true,
				[]models.Flag{models.FlagWaiting, models.FlagRunning})
		if currency != "" {
			q = q.Where("currency = ?", ledger.NormalizeCurrency(currency))
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("store.ListRunningByBranch: count: %w", err)
	}

	var recs []models.WagerRecord
	if err := scope().Order("bet_time ASC, id ASC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("store.ListRunningByBranch: %w", err)
	}
	return recs, total, nil
}

// ListStaleRunning returns running wagers of a provider recorded before
// cutoff, oldest first.
func (s *WagerStore) ListStaleRunning(ctx context.Context, provider string, cutoff time.Time, limit int) ([]models.WagerRecord, error) {
	var recs []models.WagerRecord
	if err := s.db.WithContext(ctx).
		Where("provider = ? AND active = ? AND flag = ? AND created_at < ?", provider, true, models.FlagRunning, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store.ListStaleRunning: %w", err)
	}
	return recs, nil
}
