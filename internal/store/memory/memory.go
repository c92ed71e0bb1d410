package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/store"
)

type Store struct {
	products  *collection[domain.Product]
	clients   *collection[domain.Client]
	sales     *collection[domain.Sale]
	exchanges *collection[domain.Exchange]
	settings  *settingsCollection
}

func New() *Store {
	return &Store{
		products:  newCollection(store.ProductSchema, cloneProduct),
		clients:   newCollection(store.ClientSchema, cloneClient),
		sales:     newCollection(store.SaleSchema, cloneSale),
		exchanges: newCollection(store.ExchangeSchema, cloneExchange),
		settings:  &settingsCollection{values: make(map[string]any)},
	}
}

// NewSeeded returns a store loaded with demo company settings, products and clients.
func NewSeeded() *Store {
	s := New()
	if err := store.Seed(context.Background(), s); err != nil {
		panic(err)
	}
	return s
}

func (s *Store) Products() store.Collection[domain.Product]   { return s.products }
func (s *Store) Clients() store.Collection[domain.Client]     { return s.clients }
func (s *Store) Sales() store.Collection[domain.Sale]         { return s.sales }
func (s *Store) Exchanges() store.Collection[domain.Exchange] { return s.exchanges }
func (s *Store) Settings() store.SettingsCollection           { return s.settings }
func (s *Store) Close() error                                 { return nil }

type collection[T any] struct {
	mu     sync.RWMutex
	schema store.Schema[T]
	clone  func(T) T
	nextID int64
	rows   map[int64]T
}

func newCollection[T any](schema store.Schema[T], clone func(T) T) *collection[T] {
	return &collection[T]{
		schema: schema,
		clone:  clone,
		nextID: 1,
		rows:   make(map[int64]T),
	}
}

func (c *collection[T]) Add(_ context.Context, record T) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.schema.ID(record)
	if id < 0 {
		return 0, store.ErrInvalidRecord
	}
	if id == 0 {
		id = c.nextID
	}
	if _, exists := c.rows[id]; exists {
		return 0, store.ErrConflict
	}
	if id >= c.nextID {
		c.nextID = id + 1
	}

	c.rows[id] = c.clone(c.schema.WithID(record, id))
	return id, nil
}

func (c *collection[T]) Put(_ context.Context, record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.schema.ID(record)
	if id < 1 {
		return store.ErrInvalidRecord
	}
	if id >= c.nextID {
		c.nextID = id + 1
	}
	c.rows[id] = c.clone(record)
	return nil
}

func (c *collection[T]) Get(_ context.Context, id int64) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, exists := c.rows[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := c.clone(record)
	return &copied, nil
}

func (c *collection[T]) GetAll(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedLocked(func(T) bool { return true }), nil
}

func (c *collection[T]) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.rows, id)
	return nil
}

func (c *collection[T]) Search(_ context.Context, index string, value string) ([]T, error) {
	if !c.schema.HasIndex(index) {
		return nil, store.ErrUnknownIndex
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedLocked(func(record T) bool {
		indexed, _ := c.schema.IndexValue(index, record)
		return indexed == value
	}), nil
}

func (c *collection[T]) sortedLocked(keep func(T) bool) []T {
	ids := make([]int64, 0, len(c.rows))
	for id, record := range c.rows {
		if keep(record) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	records := make([]T, 0, len(ids))
	for _, id := range ids {
		records = append(records, c.clone(c.rows[id]))
	}
	return records
}

type settingsCollection struct {
	mu     sync.RWMutex
	values map[string]any
}

func (c *settingsCollection) Put(_ context.Context, setting domain.Setting) error {
	if setting.Key == "" {
		return store.ErrInvalidRecord
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[setting.Key] = setting.Value
	return nil
}

func (c *settingsCollection) Get(_ context.Context, key string) (*domain.Setting, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, exists := c.values[key]
	if !exists {
		return nil, store.ErrNotFound
	}
	return &domain.Setting{Key: key, Value: value}, nil
}

func (c *settingsCollection) GetAll(_ context.Context) ([]domain.Setting, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.values))
	for key := range c.values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	settings := make([]domain.Setting, 0, len(keys))
	for _, key := range keys {
		settings = append(settings, domain.Setting{Key: key, Value: c.values[key]})
	}
	return settings, nil
}

func (c *settingsCollection) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func cloneProduct(src domain.Product) domain.Product {
	dst := src
	if src.Image != nil {
		image := *src.Image
		dst.Image = &image
	}
	return dst
}

func cloneClient(src domain.Client) domain.Client {
	return src
}

func cloneSale(src domain.Sale) domain.Sale {
	dst := src
	dst.Items = append([]domain.SaleLine(nil), src.Items...)
	if src.Client != nil {
		client := *src.Client
		dst.Client = &client
	}
	dst.Payment = clonePayment(src.Payment)
	return dst
}

func clonePayment(src domain.PaymentDetail) domain.PaymentDetail {
	dst := src
	if src.ClientID != nil {
		id := *src.ClientID
		dst.ClientID = &id
	}
	dst.InstallmentValue = cloneDecimal(src.InstallmentValue)
	dst.CashAmount = cloneDecimal(src.CashAmount)
	dst.Change = cloneDecimal(src.Change)
	return dst
}

func cloneDecimal(src *decimal.Decimal) *decimal.Decimal {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}

func cloneExchange(src domain.Exchange) domain.Exchange {
	return src
}
