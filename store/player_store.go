package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportsledger/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate record")
)

// PlayerStore holds branches, their players and launch sessions.
type PlayerStore struct {
	db *gorm.DB
}

func NewPlayerStore(db *gorm.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) FindPlayer(ctx context.Context, userCode string) (*models.Player, error) {
	var p models.Player
	if err := s.db.WithContext(ctx).Where("user_code = ?", userCode).Take(&p).Error; err != nil {
		return nil, wrap("store.FindPlayer", err)
	}
	return &p, nil
}

func (s *PlayerStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	return wrap("store.CreatePlayer", s.db.WithContext(ctx).Create(p).Error)
}

func (s *PlayerStore) FindBranch(ctx context.Context, branchCode string) (*models.Branch, error) {
	var b models.Branch
	if err := s.db.WithContext(ctx).Where("branch_code = ?", branchCode).Take(&b).Error; err != nil {
		return nil, wrap("store.FindBranch", err)
	}
	return &b, nil
}

func (s *PlayerStore) BranchCodeExists(ctx context.Context, branchCode string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Branch{}).Where("branch_code = ?", branchCode).Count(&n).Error; err != nil {
		return false, wrap("store.BranchCodeExists", err)
	}
	return n > 0, nil
}

func (s *PlayerStore) CreateBranch(ctx context.Context, b *models.Branch) error {
	return wrap("store.CreateBranch", s.db.WithContext(ctx).Create(b).Error)
}

func (s *PlayerStore) CreateSession(ctx context.Context, sess *models.Session) error {
	return wrap("store.CreateSession", s.db.WithContext(ctx).Create(sess).Error)
}

// FindSession returns an unexpired session with its player.
func (s *PlayerStore) FindSession(ctx context.Context, sid string, now time.Time) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).Preload("Player").
		Where("sid = ? AND expires_at > ?", sid, now).
		Take(&sess).Error
	if err != nil {
		return nil, wrap("store.FindSession", err)
	}
	return &sess, nil
}

func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
