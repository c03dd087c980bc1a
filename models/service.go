package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UserRoleAdmin    = "admin"
	UserRoleUser     = "user"
	UserRoleProvider = "service-provider"
)

// ProviderService is a paid service offered by a service-provider user.
type ProviderService struct {
	ID          string          `json:"id"`
	ProviderID  string          `json:"provider_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Created     time.Time       `json:"created"`
}
