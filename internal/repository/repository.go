package repository

import "gorm.io/gorm"

type Repository struct {
	DB            *gorm.DB
	Drops         DropRepo
	DropProducts  DropProductRepo
	Orders        OrderRepo
	OrderProducts OrderProductRepo
	Clients       ClientRepo
	Locations     LocationRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:            db,
		Drops:         NewDropRepo(db),
		DropProducts:  NewDropProductRepo(db),
		Orders:        NewOrderRepo(db),
		OrderProducts: NewOrderProductRepo(db),
		Clients:       NewClientRepo(db),
		Locations:     NewLocationRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against a repository set bound to one transaction.
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
