package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the stores a checkout or restock touches.
type Repositories struct {
	Products  ProductRepository
	Sales     SaleRepository
	Movements MovementRepository
}

// Transactor runs fn with repositories bound to a single database transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Products:  NewProductRepo(tx),
			Sales:     NewSaleRepo(tx),
			Movements: NewMovementRepo(tx),
		})
	})
}
