package repositories

import "gorm.io/gorm"

// CatalogWriter is the set of repositories an admin submission writes to.
type CatalogWriter struct {
	Events   EventRepository
	Products ProductRepository
}

// Transactor runs fn with repositories bound to a single transaction.
// Returning an error from fn rolls every write back.
type Transactor interface {
	InTx(fn func(w CatalogWriter) error) error
}

// GORMTransactor is a GORM implementation of Transactor.
type GORMTransactor struct {
	db *gorm.DB
}

// NewGORMTransactor creates a new instance of GORMTransactor.
func NewGORMTransactor(db *gorm.DB) *GORMTransactor {
	return &GORMTransactor{db: db}
}

func (t *GORMTransactor) InTx(fn func(w CatalogWriter) error) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		return fn(CatalogWriter{
			Events:   NewGORMEventRepository(tx),
			Products: NewGORMProductRepository(tx),
		})
	})
}
