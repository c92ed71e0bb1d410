package store

import (
	"context"
	"errors"

	"sergioimports/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("record key already exists")
	ErrInvalidRecord = errors.New("invalid record")
	ErrUnknownIndex  = errors.New("unknown index")
)

// Collection names, shared by every backend.
const (
	CollectionProducts  = "products"
	CollectionClients   = "clients"
	CollectionSales     = "sales"
	CollectionExchanges = "exchanges"
	CollectionSettings  = "settings"
)

// Secondary indexes per collection.
const (
	IndexName     = "name"
	IndexCategory = "category"
	IndexBarcode  = "barcode"
	IndexEmail    = "email"
	IndexPhone    = "phone"
	IndexDate     = "date"
	IndexClientID = "clientId"
	IndexTotal    = "total"
	IndexSaleID   = "saleId"
	IndexStatus   = "status"
)

// Collection is the keyed record contract consumed by the service layer.
// Identifiers are assigned by the store on Add when the record carries none.
type Collection[T any] interface {
	Add(ctx context.Context, record T) (int64, error)
	Put(ctx context.Context, record T) error
	Get(ctx context.Context, id int64) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, index string, value string) ([]T, error)
}

type SettingsCollection interface {
	Put(ctx context.Context, setting domain.Setting) error
	Get(ctx context.Context, key string) (*domain.Setting, error)
	GetAll(ctx context.Context) ([]domain.Setting, error)
	Delete(ctx context.Context, key string) error
}

type Repository interface {
	Products() Collection[domain.Product]
	Clients() Collection[domain.Client]
	Sales() Collection[domain.Sale]
	Exchanges() Collection[domain.Exchange]
	Settings() SettingsCollection
	Close() error
}
