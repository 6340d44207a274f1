package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/integration"
)

// PlatformCredentialsModel is the persistence model for platform_credentials.
// Secret columns hold sealed values; sealing happens in the repository.
type PlatformCredentialsModel struct {
	Platform      string    `gorm:"type:varchar(20);primaryKey"`
	StoreURL      string    `gorm:"type:varchar(500)"`
	APIKey        string    `gorm:"column:api_key;type:text"`
	APISecret     string    `gorm:"column:api_secret;type:text"`
	WebhookSecret string    `gorm:"type:text"`
	IsEnabled     bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlatformCredentialsModel) TableName() string {
	return "platform_credentials"
}

// ToDomain converts the model to domain credentials. Secrets are returned as stored.
func (m *PlatformCredentialsModel) ToDomain() *integration.PlatformCredentials {
	return &integration.PlatformCredentials{
		Platform:      integration.PlatformCode(m.Platform),
		StoreURL:      m.StoreURL,
		APIKey:        m.APIKey,
		APISecret:     m.APISecret,
		WebhookSecret: m.WebhookSecret,
		IsEnabled:     m.IsEnabled,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the model from domain credentials
func (m *PlatformCredentialsModel) FromDomain(c *integration.PlatformCredentials) {
	m.Platform = string(c.Platform)
	m.StoreURL = c.StoreURL
	m.APIKey = c.APIKey
	m.APISecret = c.APISecret
	m.WebhookSecret = c.WebhookSecret
	m.IsEnabled = c.IsEnabled
	m.UpdatedAt = c.UpdatedAt
}

// SyncLogModel is the persistence model for order_sync_logs
type SyncLogModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index:idx_sync_logs_order"`
	OrderCode      string    `gorm:"type:varchar(64);not null"`
	Platform       string    `gorm:"type:varchar(20);not null"`
	Direction      string    `gorm:"type:varchar(10);not null"`
	Outcome        string    `gorm:"type:varchar(10);not null"`
	InternalStatus string    `gorm:"type:varchar(32)"`
	VendorStatus   string    `gorm:"type:varchar(64)"`
	Message        string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null;index:idx_sync_logs_created"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "order_sync_logs"
}

// ToDomain converts the model to a domain sync log
func (m *SyncLogModel) ToDomain() integration.SyncLog {
	return integration.SyncLog{
		ID:             m.ID,
		OrderID:        m.OrderID,
		OrderCode:      m.OrderCode,
		Platform:       integration.PlatformCode(m.Platform),
		Direction:      integration.SyncDirection(m.Direction),
		Outcome:        integration.PushOutcome(m.Outcome),
		InternalStatus: m.InternalStatus,
		VendorStatus:   m.VendorStatus,
		Message:        m.Message,
		CreatedAt:      m.CreatedAt,
	}
}

// SyncLogModelFromDomain creates a persistence model from a domain sync log
func SyncLogModelFromDomain(l *integration.SyncLog) *SyncLogModel {
	return &SyncLogModel{
		ID:             l.ID,
		OrderID:        l.OrderID,
		OrderCode:      l.OrderCode,
		Platform:       string(l.Platform),
		Direction:      string(l.Direction),
		Outcome:        string(l.Outcome),
		InternalStatus: l.InternalStatus,
		VendorStatus:   l.VendorStatus,
		Message:        l.Message,
		CreatedAt:      l.CreatedAt,
	}
}
