// Package repo holds the GORM plumbing shared by the domain repositories.
package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base wraps the connection a repository queries through.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx returns it unbound.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// First loads the row with primary key id into dest.
func (b Base) First(ctx context.Context, dest any, id uuid.UUID) error {
	return b.DB(ctx).First(dest, "id = ?", id).Error
}

// UpdateByID applies values to the row with primary key id. It returns
// gorm.ErrRecordNotFound when no row matched.
func (b Base) UpdateByID(ctx context.Context, model any, id uuid.UUID, values map[string]any) error {
	res := b.DB(ctx).Model(model).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NullString trims value and maps the empty string to NULL.
func NullString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
