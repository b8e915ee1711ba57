package slot

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sponsorship-studio/engine/internal/models"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// GormStore persists slots as rows of the slot_entries table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var e models.SlotEntry
	err := s.db.WithContext(ctx).Where("namespace = ? AND key = ?", namespace, key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get slot entry failed")
	}
	return []byte(e.Value), nil
}

// Put upserts the value. Concurrent writers to the same key race and the last
// one wins.
func (s *GormStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	e := models.SlotEntry{
		Namespace: namespace,
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "put slot entry failed")
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, namespace, key string) error {
	err := s.db.WithContext(ctx).Where("namespace = ? AND key = ?", namespace, key).Delete(&models.SlotEntry{}).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete slot entry failed")
	}
	return nil
}

// PurgeSessions deletes session slot entries not written since cutoff and
// returns the number of rows removed.
func (s *GormStore) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("namespace LIKE ? AND updated_at < ?", SessionPrefix+"%", cutoff).
		Delete(&models.SlotEntry{})
	if res.Error != nil {
		return 0, appErr.Wrap(res.Error, appErr.CodeInternal, "purge session slots failed")
	}
	return res.RowsAffected, nil
}
