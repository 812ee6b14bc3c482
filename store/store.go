package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/theazran/tagihYT/model"
)

var ErrNotFound = errors.New("transaction not found")

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, tx *model.Transaction) error {
	return s.DB.WithContext(ctx).Create(tx).Error
}

func (s *Store) FindByOrderID(ctx context.Context, orderID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindAll returns every transaction, newest first.
func (s *Store) FindAll(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (s *Store) FindByStatus(ctx context.Context, status string) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := s.DB.WithContext(ctx).Where("status = ?", status).Find(&txs).Error
	return txs, err
}

func (s *Store) FindByMonthAndStatuses(ctx context.Context, month string, statuses []string) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := s.DB.WithContext(ctx).
		Where("month = ? AND status IN ?", month, statuses).
		Find(&txs).Error
	return txs, err
}

// UpdateStatusCAS moves a transaction from prev to next in a single
// conditional UPDATE. It reports swapped=false when the stored status no
// longer equals prev, which means another trigger got there first (or the
// row is gone). The caller must treat swapped=false as "do not notify".
func (s *Store) UpdateStatusCAS(ctx context.Context, orderID, prev, next string) (*model.Transaction, bool, error) {
	res := s.DB.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("order_id = ? AND status = ?", orderID, prev).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	tx, err := s.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, true, err
	}
	return tx, true, nil
}

// Touch refreshes updated_at without changing status. Used by manual
// checks so the admin view shows when a transaction was last verified.
func (s *Store) Touch(ctx context.Context, orderID string) error {
	return s.DB.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("order_id = ?", orderID).
		Update("updated_at", time.Now()).Error
}

// Delete removes a transaction. Deleting an unknown order id is not an
// error.
func (s *Store) Delete(ctx context.Context, orderID string) error {
	return s.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&model.Transaction{}).Error
}
