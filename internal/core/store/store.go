// Package store is the persistence collaborator shared by every module: a thin
// generic repository over gorm plus error normalization and transactions.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is referenced")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the window to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type PageResult[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewPageResult never returns a nil Items slice so JSON renders [].
func NewPageResult[T any](items []T, total int64, page Page) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}
}

// Scope narrows a query, e.g. a where clause for list filters.
type Scope = func(*gorm.DB) *gorm.DB

func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// Repository implements create/findByPk/findOne/findAndCountAll/update/destroy for T.
type Repository[T any] struct {
	db *gorm.DB
}

func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// WithTx binds the repository to an open transaction.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx}
}

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return Translate(r.db.WithContext(ctx).Create(entity).Error)
}

func (r *Repository[T]) FindByPk(ctx context.Context, id int64) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, Translate(err)
	}
	return &entity, nil
}

func (r *Repository[T]) FindOne(ctx context.Context, query any, args ...any) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where(query, args...).First(&entity).Error; err != nil {
		return nil, Translate(err)
	}
	return &entity, nil
}

func (r *Repository[T]) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, Translate(err)
	}
	return count > 0, nil
}

func (r *Repository[T]) FindAndCountAll(ctx context.Context, page Page, scopes ...Scope) ([]T, int64, error) {
	page = page.Normalize()
	base := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, Translate(err)
	}

	var items []T
	err := base.Session(&gorm.Session{}).
		Order("id ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, Translate(err)
	}
	return items, total, nil
}

func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	return Translate(r.db.WithContext(ctx).Save(entity).Error)
}

func (r *Repository[T]) Destroy(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Transaction runs fn inside one database transaction; any error rolls it back.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// Translate maps driver errors onto the store sentinels. Drivers that support
// gorm's TranslateError yield gorm sentinels; the message checks cover the rest.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate), errors.Is(err, ErrReferenced):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), containsAny(err, "UNIQUE constraint failed", "duplicate key value", "SQLSTATE 23505"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), containsAny(err, "FOREIGN KEY constraint failed", "violates foreign key constraint", "SQLSTATE 23503"):
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	return err
}

func containsAny(err error, needles ...string) bool {
	msg := err.Error()
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
