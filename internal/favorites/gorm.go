package favorites

import (
	"context"
	"errors"
	"time"

	"pawmart-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend keeps each owner's set in one favorite_sets row.
type GormBackend struct {
	DB *gorm.DB
}

func (b *GormBackend) Read(ctx context.Context, owner string) ([]byte, error) {
	var rec models.FavoriteRecord
	if err := b.DB.WithContext(ctx).Where("owner = ?", owner).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(rec.Keys), nil
}

func (b *GormBackend) Write(ctx context.Context, owner string, payload []byte) error {
	rec := models.FavoriteRecord{
		Owner:     owner,
		Keys:      datatypes.JSON(payload),
		UpdatedAt: time.Now(),
	}
	return b.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"keys", "updated_at"}),
	}).Create(&rec).Error
}
