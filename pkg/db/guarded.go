package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateIfMatch writes updates to the row with the given id only while column
// still holds expected. A missing row yields gorm.ErrRecordNotFound and a row
// whose column moved on yields ErrStaleWrite.
func UpdateIfMatch(ctx context.Context, conn *gorm.DB, model any, id uuid.UUID, column string, expected any, updates map[string]any) error {
	res := conn.WithContext(ctx).
		Model(model).
		Where("id = ? AND "+column+" = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := conn.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStaleWrite
}
