package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/money"
	"sergioimports/backend/internal/store"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.Products().GetAll(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	product, err := s.repo.Products().Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

// SearchProducts matches name or category case-insensitively, or a barcode
// fragment. An empty term lists everything.
func (s *Service) SearchProducts(ctx context.Context, term string) ([]domain.Product, error) {
	products, err := s.repo.Products().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return products, nil
	}
	needle := strings.ToLower(term)

	matched := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), needle) ||
			strings.Contains(strings.ToLower(product.Category), needle) ||
			(product.Barcode != "" && strings.Contains(product.Barcode, term)) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (s *Service) FindProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.Product{}, fmt.Errorf("%w: barcode is required", ErrInvalidInput)
	}

	found, err := s.repo.Products().Search(ctx, store.IndexBarcode, barcode)
	if err != nil {
		return domain.Product{}, err
	}
	if len(found) == 0 {
		return domain.Product{}, store.ErrNotFound
	}
	return found[0], nil
}

func (s *Service) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.Products().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.LowStock() {
			low = append(low, product)
		}
	}
	return low, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductRequest) (domain.Product, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return domain.Product{}, err
	}

	id, err := s.repo.Products().Add(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = id

	s.invalidateDashboard(ctx)
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductRequest) (domain.Product, error) {
	if _, err := s.repo.Products().Get(ctx, id); err != nil {
		return domain.Product{}, err
	}

	product, err := productFromRequest(req)
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = id

	if err := s.repo.Products().Put(ctx, product); err != nil {
		return domain.Product{}, err
	}

	s.invalidateDashboard(ctx)
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.repo.Products().Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Products().Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	return nil
}

func productFromRequest(req domain.ProductRequest) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: price and cost must not be negative", ErrInvalidInput)
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock and min_stock must not be negative", ErrInvalidInput)
	}
	barcode := strings.TrimSpace(req.Barcode)
	if !isDigits(barcode) {
		return domain.Product{}, fmt.Errorf("%w: barcode must contain digits only", ErrInvalidInput)
	}

	return domain.Product{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       money.Round(req.Price),
		Cost:        money.Round(req.Cost),
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Category:    strings.TrimSpace(req.Category),
		Barcode:     barcode,
		Brand:       strings.TrimSpace(req.Brand),
		Model:       strings.TrimSpace(req.Model),
		Supplier:    strings.TrimSpace(req.Supplier),
		Image:       req.Image,
	}, nil
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.repo.Clients().GetAll(ctx)
}

func (s *Service) GetClient(ctx context.Context, id int64) (domain.Client, error) {
	client, err := s.repo.Clients().Get(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

// SearchClients matches name or email case-insensitively, or a phone fragment.
func (s *Service) SearchClients(ctx context.Context, term string) ([]domain.Client, error) {
	clients, err := s.repo.Clients().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return clients, nil
	}
	needle := strings.ToLower(term)

	matched := make([]domain.Client, 0, len(clients))
	for _, client := range clients {
		if strings.Contains(strings.ToLower(client.Name), needle) ||
			strings.Contains(strings.ToLower(client.Email), needle) ||
			strings.Contains(client.Phone, term) {
			matched = append(matched, client)
		}
	}
	return matched, nil
}

func (s *Service) CreateClient(ctx context.Context, req domain.ClientRequest) (domain.Client, error) {
	client, err := clientFromRequest(req)
	if err != nil {
		return domain.Client{}, err
	}

	id, err := s.repo.Clients().Add(ctx, client)
	if err != nil {
		return domain.Client{}, err
	}
	client.ID = id

	s.invalidateDashboard(ctx)
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, id int64, req domain.ClientRequest) (domain.Client, error) {
	if _, err := s.repo.Clients().Get(ctx, id); err != nil {
		return domain.Client{}, err
	}

	client, err := clientFromRequest(req)
	if err != nil {
		return domain.Client{}, err
	}
	client.ID = id

	if err := s.repo.Clients().Put(ctx, client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	if _, err := s.repo.Clients().Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Clients().Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	return nil
}

func clientFromRequest(req domain.ClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return domain.Client{
		Name:    name,
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}, nil
}

// ListSales returns sales newest first.
func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.repo.Sales().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(sales)
	return sales, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (domain.Sale, error) {
	sale, err := s.repo.Sales().Get(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) SalesByClient(ctx context.Context, clientID int64) ([]domain.Sale, error) {
	sales, err := s.repo.Sales().Search(ctx, store.IndexClientID, strconv.FormatInt(clientID, 10))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(sales)
	return sales, nil
}

func sortNewestFirst(sales []domain.Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		if sales[i].Date.Equal(sales[j].Date) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].Date.After(sales[j].Date)
	})
}
