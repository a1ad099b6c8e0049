package models

import (
	"time"

	"github.com/google/uuid"
)

// StorefrontSettings is the per-tenant storefront configuration document.
// PaymentMethods is the one list that is concatenated (not overwritten)
// when settings are merged during a transfer; keys the service does not
// model explicitly ride along in Extra.
type StorefrontSettings struct {
	TenantID       uuid.UUID      `json:"tenant_id"`
	ThemeColor     string         `json:"theme_color,omitempty"`
	BannerURL      string         `json:"banner_url,omitempty"`
	WhatsApp       string         `json:"whatsapp,omitempty"`
	PaymentMethods []string       `json:"payment_methods,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
