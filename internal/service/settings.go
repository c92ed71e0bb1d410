package service

import (
	"context"
	"fmt"
	"strings"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/store"
)

const (
	defaultExchangePolicy   = "Trocas em até 7 dias com nota fiscal."
	defaultExchangeDeadline = "7"
)

// Settings merges every stored key into one flat map.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.Settings().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	merged := make(domain.Settings, len(stored))
	for _, setting := range stored {
		merged[setting.Key] = setting.Value
	}
	return merged, nil
}

func (s *Service) UpdateSettings(ctx context.Context, values map[string]any) (domain.Settings, error) {
	for key := range values {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: setting key is required", ErrInvalidInput)
		}
	}

	for key, value := range values {
		if err := s.repo.Settings().Put(ctx, domain.Setting{Key: key, Value: value}); err != nil {
			return nil, err
		}
	}
	return s.Settings(ctx)
}

func (s *Service) Receipt(ctx context.Context, saleID int64) (domain.Receipt, error) {
	sale, err := s.repo.Sales().Get(ctx, saleID)
	if err != nil {
		return domain.Receipt{}, err
	}
	return s.receiptFor(ctx, *sale)
}

// LastReceipt renders the sale committed most recently in this session.
func (s *Service) LastReceipt(ctx context.Context) (domain.Receipt, error) {
	sale, ok := s.LastSale()
	if !ok {
		return domain.Receipt{}, fmt.Errorf("last sale: %w", store.ErrNotFound)
	}
	return s.receiptFor(ctx, sale)
}

func (s *Service) receiptFor(ctx context.Context, sale domain.Sale) (domain.Receipt, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}
	return buildReceipt(sale, settings), nil
}

func buildReceipt(sale domain.Sale, settings domain.Settings) domain.Receipt {
	receipt := domain.Receipt{
		Sale: sale,
		Company: domain.CompanyInfo{
			Name:      settings.String(domain.SettingCompanyName, ""),
			LegalName: settings.String(domain.SettingCompanyLegalName, ""),
			CNPJ:      settings.String(domain.SettingCNPJ, ""),
			Address:   settings.String(domain.SettingAddress, ""),
			City:      settings.String(domain.SettingCity, ""),
			Phone:     settings.String(domain.SettingPhone, ""),
			Email:     settings.String(domain.SettingEmail, ""),
			Logo:      settings.String(domain.SettingCompanyLogo, ""),
		},
		ExchangePolicy:       settings.String(domain.SettingExchangePolicy, defaultExchangePolicy),
		ExchangeDeadlineDays: settings.String(domain.SettingExchangeDeadline, defaultExchangeDeadline),
	}
	if sale.PaymentMethod == domain.PaymentPix {
		receipt.PixQRCode = settings.String(domain.SettingPixQRCode, "")
	}
	return receipt
}
