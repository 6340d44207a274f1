package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/infrastructure/persistence/models"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// UpsertIngested inserts the order or, when the code already exists, overwrites only
// the ingestion-owned columns. The conflict is resolved by the database in a single
// INSERT ... ON CONFLICT statement, so concurrent deliveries of one order cannot
// produce two rows.
func (r *GormOrderRepository) UpsertIngested(ctx context.Context, o *order.Order) (order.UpsertResult, error) {
	model := models.OrderModelFromDomain(o)
	model.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns(models.IngestionColumns),
	}).Create(model).Error
	if err != nil {
		return order.UpsertResult{}, fmt.Errorf("upsert order %s: %w", o.Code, err)
	}

	var stored models.OrderModel
	if err := r.db.WithContext(ctx).Select("id").Where("code = ?", o.Code).Take(&stored).Error; err != nil {
		return order.UpsertResult{}, fmt.Errorf("read back order %s: %w", o.Code, err)
	}

	return order.UpsertResult{
		ID:      stored.ID,
		Created: stored.ID == o.ID,
	}, nil
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds an order by its external code
func (r *GormOrderRepository) FindByCode(ctx context.Context, code string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of orders matching the filter together with the total count
func (r *GormOrderRepository) List(ctx context.Context, filter order.Filter) ([]order.Order, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePaging(filter.Page, filter.PageSize)

	var orderModels []models.OrderModel
	if err := r.applyFilter(r.db.WithContext(ctx), filter).
		Clauses(orderSort.orderBy(filter.SortBy, filter.SortOrder)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// SaveWorkflow persists the status and the operator-owned fields of an existing order
func (r *GormOrderRepository) SaveWorkflow(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":            string(o.Status),
			"comment":           o.Comment,
			"assigned_to":       o.AssignedTo,
			"payment_method":    o.PaymentMethod,
			"payment_reference": o.PaymentReference,
			"paid_at":           o.PaidAt,
			"updated_at":        o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter order.Filter) *gorm.DB {
	if filter.Source != "" {
		query = query.Where("source = ?", string(filter.Source))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(code) LIKE ? OR LOWER(customer_name) LIKE ? OR phone LIKE ? OR LOWER(product_name) LIKE ?)",
			pattern, pattern, "%"+search+"%", pattern,
		)
	}
	return query
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultOrderPageSize
	}
	if pageSize > maxOrderPageSize {
		pageSize = maxOrderPageSize
	}
	return page, pageSize
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
