package services

import (
	"context"
	"fmt"

	"econnect/internal/status"
	"econnect/models"

	"github.com/shopspring/decimal"
)

// ServiceStore is the document-store surface the marketplace needs.
type ServiceStore interface {
	ServiceByID(ctx context.Context, id string) (*models.ProviderService, error)
	ListServices(ctx context.Context, limit, offset int) ([]*models.ProviderService, error)
	CreateService(ctx context.Context, svc *models.ProviderService) error
	DeleteService(ctx context.Context, id string) error
}

// CreateServiceRequest carries the inputs for listing a provider service.
type CreateServiceRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

// MarketplaceService manages the provider service catalog. Only provider
// accounts may list services.
type MarketplaceService struct {
	store ServiceStore
}

func NewMarketplaceService(store ServiceStore) *MarketplaceService {
	return &MarketplaceService{store: store}
}

// CreateService lists a new service for the provider.
func (s *MarketplaceService) CreateService(ctx context.Context, req *CreateServiceRequest, by SessionUser, byRole string) (*models.ProviderService, error) {
	if byRole != models.UserRoleProvider && byRole != models.UserRoleAdmin {
		return nil, fmt.Errorf("%w: only providers can list services", status.ErrPermission)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", status.ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", status.ErrValidation)
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	svc := &models.ProviderService{
		ProviderID:  by.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// ListServices pages through the catalog, newest first.
func (s *MarketplaceService) ListServices(ctx context.Context, limit, offset int) ([]*models.ProviderService, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListServices(ctx, limit, offset)
}

// DeleteService removes a listing. Owner or admin only.
func (s *MarketplaceService) DeleteService(ctx context.Context, id string, by SessionUser, byRole string) error {
	svc, err := s.store.ServiceByID(ctx, id)
	if err != nil {
		return err
	}
	if svc.ProviderID != by.ID && byRole != models.UserRoleAdmin {
		return fmt.Errorf("%w: only the listing provider can delete it", status.ErrPermission)
	}
	return s.store.DeleteService(ctx, id)
}
