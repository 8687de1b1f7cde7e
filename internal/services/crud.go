package services

import (
	"context"

	"gorm.io/gorm"
)

// store holds the primary-key operations shared by the record services.
type store[T any] struct {
	db   *gorm.DB
	name string
}

func (s store[T]) get(ctx context.Context, id string) (*T, error) {
	var row T
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrap("get "+s.name, err)
	}
	return &row, nil
}

func (s store[T]) create(ctx context.Context, row *T) error {
	return wrap("create "+s.name, s.db.WithContext(ctx).Create(row).Error)
}

// update applies the column changes and returns the reloaded row.
func (s store[T]) update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(row).Updates(changes).Error; err != nil {
			return nil, wrap("update "+s.name, err)
		}
	}
	return s.get(ctx, id)
}

func (s store[T]) delete(ctx context.Context, id string) error {
	var row T
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&row)
	if res.Error != nil {
		return wrap("delete "+s.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
