package store

import (
	"strconv"
	"time"

	"sergioimports/backend/internal/domain"
)

// Schema describes how a backend reads identity and index values from a record.
type Schema[T any] struct {
	Name    string
	ID      func(T) int64
	WithID  func(T, int64) T
	Indexes map[string]func(T) string
}

// IndexValue extracts the indexed value for record, or ErrUnknownIndex.
func (s Schema[T]) IndexValue(index string, record T) (string, error) {
	extract, ok := s.Indexes[index]
	if !ok {
		return "", ErrUnknownIndex
	}
	return extract(record), nil
}

func (s Schema[T]) HasIndex(index string) bool {
	_, ok := s.Indexes[index]
	return ok
}

// FormatTime is the canonical text form of date index values.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var ProductSchema = Schema[domain.Product]{
	Name:   CollectionProducts,
	ID:     func(p domain.Product) int64 { return p.ID },
	WithID: func(p domain.Product, id int64) domain.Product { p.ID = id; return p },
	Indexes: map[string]func(domain.Product) string{
		IndexName:     func(p domain.Product) string { return p.Name },
		IndexCategory: func(p domain.Product) string { return p.Category },
		IndexBarcode:  func(p domain.Product) string { return p.Barcode },
	},
}

var ClientSchema = Schema[domain.Client]{
	Name:   CollectionClients,
	ID:     func(c domain.Client) int64 { return c.ID },
	WithID: func(c domain.Client, id int64) domain.Client { c.ID = id; return c },
	Indexes: map[string]func(domain.Client) string{
		IndexName:  func(c domain.Client) string { return c.Name },
		IndexEmail: func(c domain.Client) string { return c.Email },
		IndexPhone: func(c domain.Client) string { return c.Phone },
	},
}

var SaleSchema = Schema[domain.Sale]{
	Name:   CollectionSales,
	ID:     func(s domain.Sale) int64 { return s.ID },
	WithID: func(s domain.Sale, id int64) domain.Sale { s.ID = id; return s },
	Indexes: map[string]func(domain.Sale) string{
		IndexDate: func(s domain.Sale) string { return FormatTime(s.Date) },
		IndexClientID: func(s domain.Sale) string {
			if s.Client == nil {
				return ""
			}
			return strconv.FormatInt(s.Client.ID, 10)
		},
		IndexTotal: func(s domain.Sale) string { return s.Total.StringFixed(2) },
	},
}

var ExchangeSchema = Schema[domain.Exchange]{
	Name:   CollectionExchanges,
	ID:     func(e domain.Exchange) int64 { return e.ID },
	WithID: func(e domain.Exchange, id int64) domain.Exchange { e.ID = id; return e },
	Indexes: map[string]func(domain.Exchange) string{
		IndexDate:   func(e domain.Exchange) string { return FormatTime(e.Date) },
		IndexSaleID: func(e domain.Exchange) string { return strconv.FormatInt(e.SaleID, 10) },
		IndexStatus: func(e domain.Exchange) string { return e.Status },
	},
}
