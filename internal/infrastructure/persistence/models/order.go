package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/domain/shared"
)

// IngestionColumns are the columns a webhook redelivery may overwrite.
// Every other column is written on insert only.
var IngestionColumns = []string{
	"status",
	"total_price",
	"quantity",
	"delivery_address",
	"product_name",
	"catalog_number",
	"updated_at",
}

// OrderModel is the persistence model for the orders table
type OrderModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreatedAt       time.Time       `gorm:"not null;index:idx_orders_created_at"`
	UpdatedAt       time.Time       `gorm:"not null"`
	Code            string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_orders_code"`
	CustomerName    string          `gorm:"type:varchar(255);not null"`
	CustomerEmail   string          `gorm:"type:varchar(255)"`
	Phone           string          `gorm:"type:varchar(64);not null"`
	DeliveryAddress string          `gorm:"type:text"`
	ProductName     string          `gorm:"type:text;not null"`
	CatalogNumber   string          `gorm:"type:text"`
	Quantity        int             `gorm:"not null;default:0"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          string          `gorm:"type:varchar(32);not null;index:idx_orders_status"`
	Source          string          `gorm:"type:varchar(20);not null;index:idx_orders_source"`
	IsCorrect       bool            `gorm:"not null;default:false"`

	Comment          string     `gorm:"type:text"`
	AssignedTo       string     `gorm:"type:varchar(100)"`
	PaymentMethod    string     `gorm:"type:varchar(50)"`
	PaymentReference string     `gorm:"type:varchar(100)"`
	PaidAt           *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// BeforeCreate assigns a time-ordered id to rows inserted without one
func (m *OrderModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id
	}
	return nil
}

// ToDomain converts the persistence model to a domain Order entity
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Code:             m.Code,
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		Phone:            m.Phone,
		DeliveryAddress:  m.DeliveryAddress,
		ProductName:      m.ProductName,
		CatalogNumber:    m.CatalogNumber,
		Quantity:         m.Quantity,
		TotalPrice:       m.TotalPrice,
		Status:           integration.InternalStatus(m.Status),
		Source:           integration.PlatformCode(m.Source),
		IsCorrect:        m.IsCorrect,
		Comment:          m.Comment,
		AssignedTo:       m.AssignedTo,
		PaymentMethod:    m.PaymentMethod,
		PaymentReference: m.PaymentReference,
		PaidAt:           m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Code = o.Code
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.Phone = o.Phone
	m.DeliveryAddress = o.DeliveryAddress
	m.ProductName = o.ProductName
	m.CatalogNumber = o.CatalogNumber
	m.Quantity = o.Quantity
	m.TotalPrice = o.TotalPrice
	m.Status = string(o.Status)
	m.Source = string(o.Source)
	m.IsCorrect = o.IsCorrect
	m.Comment = o.Comment
	m.AssignedTo = o.AssignedTo
	m.PaymentMethod = o.PaymentMethod
	m.PaymentReference = o.PaymentReference
	m.PaidAt = o.PaidAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
