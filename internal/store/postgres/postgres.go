package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/store"
)

type Store struct {
	db        *sql.DB
	products  *collection[domain.Product]
	clients   *collection[domain.Client]
	sales     *collection[domain.Sale]
	exchanges *collection[domain.Exchange]
	settings  *settingsCollection
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:        db,
		products:  &collection[domain.Product]{db: db, schema: store.ProductSchema},
		clients:   &collection[domain.Client]{db: db, schema: store.ClientSchema},
		sales:     &collection[domain.Sale]{db: db, schema: store.SaleSchema},
		exchanges: &collection[domain.Exchange]{db: db, schema: store.ExchangeSchema},
		settings:  &settingsCollection{db: db},
	}, nil
}

// Migrate creates the collection tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, table := range []string{store.CollectionProducts, store.CollectionClients, store.CollectionSales, store.CollectionExchanges} {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id BIGSERIAL PRIMARY KEY,
				doc JSONB NOT NULL,
				indexes JSONB NOT NULL DEFAULT '{}'::jsonb
			);
			CREATE INDEX IF NOT EXISTS %[1]s_indexes_gin ON %[1]s USING GIN (indexes);
		`, table))
		if err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate settings: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Products() store.Collection[domain.Product]   { return s.products }
func (s *Store) Clients() store.Collection[domain.Client]     { return s.clients }
func (s *Store) Sales() store.Collection[domain.Sale]         { return s.sales }
func (s *Store) Exchanges() store.Collection[domain.Exchange] { return s.exchanges }
func (s *Store) Settings() store.SettingsCollection           { return s.settings }

// collection stores each record as a JSONB document next to a JSONB map of
// its secondary index values. Table names come from store.Schema, never from input.
type collection[T any] struct {
	db     *sql.DB
	schema store.Schema[T]
}

func (c *collection[T]) Add(ctx context.Context, record T) (int64, error) {
	id := c.schema.ID(record)
	if id < 0 {
		return 0, store.ErrInvalidRecord
	}
	doc, indexes, err := c.encode(record)
	if err != nil {
		return 0, err
	}

	if id == 0 {
		err := c.db.QueryRowContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (doc, indexes) VALUES ($1, $2) RETURNING id
		`, c.schema.Name), doc, indexes).Scan(&id)
		if err != nil {
			return 0, err
		}
		return id, nil
	}

	_, err = c.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, doc, indexes) VALUES ($1, $2, $3)
	`, c.schema.Name), id, doc, indexes)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrConflict
		}
		return 0, err
	}
	if err := c.syncSequence(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *collection[T]) Put(ctx context.Context, record T) error {
	id := c.schema.ID(record)
	if id < 1 {
		return store.ErrInvalidRecord
	}
	doc, indexes, err := c.encode(record)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, doc, indexes) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, indexes = EXCLUDED.indexes
	`, c.schema.Name), id, doc, indexes)
	if err != nil {
		return err
	}
	return c.syncSequence(ctx)
}

func (c *collection[T]) Get(ctx context.Context, id int64) (*T, error) {
	var doc []byte
	err := c.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT doc FROM %s WHERE id = $1
	`, c.schema.Name), id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	record, err := c.decode(id, doc)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *collection[T]) GetAll(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, doc FROM %s ORDER BY id
	`, c.schema.Name))
	if err != nil {
		return nil, err
	}
	return c.scanRows(rows)
}

func (c *collection[T]) Delete(ctx context.Context, id int64) error {
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.schema.Name), id)
	return err
}

func (c *collection[T]) Search(ctx context.Context, index string, value string) ([]T, error) {
	if !c.schema.HasIndex(index) {
		return nil, store.ErrUnknownIndex
	}

	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, doc FROM %s WHERE indexes->>$1 = $2 ORDER BY id
	`, c.schema.Name), index, value)
	if err != nil {
		return nil, err
	}
	return c.scanRows(rows)
}

func (c *collection[T]) scanRows(rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	records := make([]T, 0, 32)
	for rows.Next() {
		var id int64
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		record, err := c.decode(id, doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *collection[T]) encode(record T) ([]byte, []byte, error) {
	doc, err := json.Marshal(record)
	if err != nil {
		return nil, nil, err
	}

	values := make(map[string]string, len(c.schema.Indexes))
	for name, extract := range c.schema.Indexes {
		values[name] = extract(record)
	}
	indexes, err := json.Marshal(values)
	if err != nil {
		return nil, nil, err
	}
	return doc, indexes, nil
}

func (c *collection[T]) decode(id int64, doc []byte) (T, error) {
	var record T
	if err := json.Unmarshal(doc, &record); err != nil {
		return record, fmt.Errorf("decode %s/%d: %w", c.schema.Name, id, err)
	}
	return c.schema.WithID(record, id), nil
}

// syncSequence keeps BIGSERIAL ahead of explicitly written identifiers.
func (c *collection[T]) syncSequence(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(`
		SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM %[1]s), 1))
	`, c.schema.Name))
	return err
}

type settingsCollection struct {
	db *sql.DB
}

func (c *settingsCollection) Put(ctx context.Context, setting domain.Setting) error {
	if setting.Key == "" {
		return store.ErrInvalidRecord
	}
	value, err := json.Marshal(setting.Value)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, setting.Key, value)
	return err
}

func (c *settingsCollection) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &domain.Setting{Key: key, Value: value}, nil
}

func (c *settingsCollection) GetAll(ctx context.Context) ([]domain.Setting, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]domain.Setting, 0, 16)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		settings = append(settings, domain.Setting{Key: key, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (c *settingsCollection) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
