package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"sergioimports/backend/internal/domain"
)

// Seed loads the demo company settings, products and clients once. It is a
// no-op when the isDataInitialized setting is already true.
func Seed(ctx context.Context, repo Repository) error {
	if marker, err := repo.Settings().Get(ctx, domain.SettingDataInitialized); err == nil {
		if done, _ := marker.Value.(bool); done {
			return nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("read seed marker: %w", err)
	}

	for _, product := range seedProducts() {
		if _, err := repo.Products().Add(ctx, product); err != nil {
			return fmt.Errorf("seed product %q: %w", product.Name, err)
		}
	}
	for _, client := range seedClients() {
		if _, err := repo.Clients().Add(ctx, client); err != nil {
			return fmt.Errorf("seed client %q: %w", client.Name, err)
		}
	}
	// The marker goes last so a partial seed is retried on the next start.
	for _, setting := range seedSettings() {
		if err := repo.Settings().Put(ctx, setting); err != nil {
			return fmt.Errorf("seed setting %s: %w", setting.Key, err)
		}
	}
	return nil
}

func seedSettings() []domain.Setting {
	return []domain.Setting{
		{Key: domain.SettingCompanyName, Value: "Sérgio Imports"},
		{Key: domain.SettingCompanyLegalName, Value: "Sérgio Imports Ltda."},
		{Key: domain.SettingCNPJ, Value: "12.345.678/0001-90"},
		{Key: domain.SettingAddress, Value: "Rua das Importações, 123, Centro"},
		{Key: domain.SettingCity, Value: "São Paulo, SP"},
		{Key: domain.SettingPhone, Value: "(11) 99999-9999"},
		{Key: domain.SettingEmail, Value: "contato@sergioimports.com"},
		{Key: domain.SettingPixKey, Value: "contato@sergioimports.com"},
		{Key: domain.SettingExchangePolicy, Value: "Trocas em até 7 dias com nota fiscal. Produtos devem estar em perfeito estado. Não aceitamos trocas de produtos íntimos."},
		{Key: domain.SettingExchangeDeadline, Value: "7"},
		{Key: domain.SettingDataInitialized, Value: true},
	}
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{
			Name: "Smartphone Galaxy S24", Description: "Smartphone Samsung Galaxy S24 128GB",
			Price: decimal.RequireFromString("2999.99"), Cost: decimal.RequireFromString("2000.00"),
			Stock: 15, MinStock: 5, Category: "Eletrônicos", Barcode: "1234567890123",
			Brand: "Samsung", Model: "Galaxy S24", Supplier: "Samsung Brasil",
		},
		{
			Name: "iPhone 15 Pro", Description: "Apple iPhone 15 Pro 256GB",
			Price: decimal.RequireFromString("8999.99"), Cost: decimal.RequireFromString("7000.00"),
			Stock: 8, MinStock: 3, Category: "Eletrônicos", Barcode: "2345678901234",
			Brand: "Apple", Model: "iPhone 15 Pro", Supplier: "Apple Brasil",
		},
		{
			Name: "Notebook Dell Inspiron", Description: "Notebook Dell Inspiron 15 Intel i5",
			Price: decimal.RequireFromString("3499.99"), Cost: decimal.RequireFromString("2800.00"),
			Stock: 12, MinStock: 4, Category: "Informática", Barcode: "3456789012345",
			Brand: "Dell", Model: "Inspiron 15", Supplier: "Dell Brasil",
		},
	}
}

func seedClients() []domain.Client {
	return []domain.Client{
		{Name: "Ana Souza", Email: "ana.souza@example.com", Phone: "(11) 98888-1001", Address: "Rua Augusta, 1500"},
		{Name: "Bruno Lima", Email: "bruno.lima@example.com", Phone: "(11) 97777-2002", Address: "Av. Paulista, 900"},
		{Name: "Carla Mendes", Email: "carla.mendes@example.com", Phone: "(21) 96666-3003", Address: "Rua do Catete, 45"},
	}
}
