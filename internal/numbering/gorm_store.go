package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultMaxAttempts = 5

// GormStore reads the proposal inputs from the database and keeps the
// authoritative CounterState row.
type GormStore struct {
	db          *gorm.DB
	prefix      string
	name        string
	maxAttempts int
}

// NewGormStore returns a store for invoice numbers issued with prefix.
func NewGormStore(db *gorm.DB, prefix string) *GormStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &GormStore{db: db, prefix: prefix, name: models.InvoiceCounter, maxAttempts: defaultMaxAttempts}
}

func (s *GormStore) withDB(db *gorm.DB) *GormStore {
	cp := *s
	cp.db = db
	return &cp
}

// StoredNext returns CompanySettings.NextInvoiceNumber when it is set.
func (s *GormStore) StoredNext(ctx context.Context) (int64, bool, error) {
	var cs models.CompanySettings
	res := s.db.WithContext(ctx).Select("id", "next_invoice_number").Order("id").Limit(1).Find(&cs)
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return cs.NextInvoiceNumber, cs.NextInvoiceNumber > 0, nil
}

// HighestNumber returns the highest well-formed number issued with prefix,
// including soft-deleted invoices since numbers are never reused.
func (s *GormStore) HighestNumber(ctx context.Context, prefix string) (string, bool, error) {
	var numbers []string
	err := s.db.WithContext(ctx).Unscoped().Model(&models.Invoice{}).
		Where("number LIKE ?", prefix+"-%").
		Order("LENGTH(number) DESC, number DESC").
		Limit(100).
		Pluck("number", &numbers).Error
	if err != nil {
		return "", false, err
	}
	for _, n := range numbers {
		if _, ok := ParseSuffix(prefix, n); ok {
			return n, true, nil
		}
	}
	return "", false, nil
}

// Reserve claims the next sequence with a compare-and-increment on the counter row.
// A lost race is retried a bounded number of times.
func (s *GormStore) Reserve(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		seq, err := s.tryReserve(ctx)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return seq, err
	}
	return 0, ErrConflict
}

func (s *GormStore) tryReserve(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := s.withDB(tx)
		var counter models.CounterState
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", s.name).First(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seed, err := nextFrom(ctx, txs, s.prefix)
			if err != nil {
				return err
			}
			counter = models.CounterState{Name: s.name, Next: seed}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter)
			if res.Error != nil {
				return fmt.Errorf("seed counter: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrConflict
			}
		case err != nil:
			return fmt.Errorf("load counter: %w", err)
		}

		// a manually raised settings value moves the counter forward, never back
		want := counter.Next
		if stored, ok, err := txs.StoredNext(ctx); err != nil {
			return err
		} else if ok && stored > want {
			want = stored
		}

		res := tx.Model(&models.CounterState{}).
			Where("name = ? AND next = ?", s.name, counter.Next).
			Updates(map[string]any{"next": want + 1, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("advance counter: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		if err := txs.raiseStoredNext(want + 1); err != nil {
			return err
		}
		seq = want
		return nil
	})
	return seq, err
}

// Advance records that sequences below next are taken, creating the counter
// when it does not exist yet. Values never decrease.
func (s *GormStore) Advance(ctx context.Context, next int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.CounterState{Name: s.name, Next: next}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed counter: %w", err)
		}
		res := tx.Model(&models.CounterState{}).
			Where("name = ? AND next < ?", s.name, next).
			Updates(map[string]any{"next": next, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		return s.withDB(tx).raiseStoredNext(next)
	})
}

func (s *GormStore) raiseStoredNext(next int64) error {
	err := s.db.Model(&models.CompanySettings{}).
		Where("next_invoice_number < ?", next).
		Update("next_invoice_number", next).Error
	if err != nil {
		return fmt.Errorf("update settings next number: %w", err)
	}
	return nil
}
