package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/infrastructure/persistence/models"
)

// SecretSealer seals credential secrets before they are written and opens them after reading
type SecretSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type plainSealer struct{}

func (plainSealer) Seal(s string) (string, error) { return s, nil }
func (plainSealer) Open(s string) (string, error) { return s, nil }

// GormCredentialsRepository implements integration.CredentialsRepository using GORM.
// Reads always hit the database so that rotated keys apply on the next request.
type GormCredentialsRepository struct {
	db     *gorm.DB
	sealer SecretSealer
}

// NewGormCredentialsRepository creates a new GormCredentialsRepository.
// A nil sealer stores secrets as given.
func NewGormCredentialsRepository(db *gorm.DB, sealer SecretSealer) *GormCredentialsRepository {
	if sealer == nil {
		sealer = plainSealer{}
	}
	return &GormCredentialsRepository{db: db, sealer: sealer}
}

// FindByPlatform returns the credentials of one platform
func (r *GormCredentialsRepository) FindByPlatform(ctx context.Context, platform integration.PlatformCode) (*integration.PlatformCredentials, error) {
	var model models.PlatformCredentialsModel
	if err := r.db.WithContext(ctx).First(&model, "platform = ?", string(platform)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrCredentialsNotFound
		}
		return nil, err
	}
	return r.open(&model)
}

// FindAll returns every stored credential set ordered by platform
func (r *GormCredentialsRepository) FindAll(ctx context.Context) ([]integration.PlatformCredentials, error) {
	var credModels []models.PlatformCredentialsModel
	if err := r.db.WithContext(ctx).Order("platform ASC").Find(&credModels).Error; err != nil {
		return nil, err
	}

	creds := make([]integration.PlatformCredentials, 0, len(credModels))
	for i := range credModels {
		c, err := r.open(&credModels[i])
		if err != nil {
			return nil, err
		}
		creds = append(creds, *c)
	}
	return creds, nil
}

// Save creates or replaces the credentials of a platform
func (r *GormCredentialsRepository) Save(ctx context.Context, creds *integration.PlatformCredentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	model := &models.PlatformCredentialsModel{}
	model.FromDomain(creds)
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now

	var err error
	if model.APIKey, err = r.sealer.Seal(creds.APIKey); err != nil {
		return fmt.Errorf("seal api key: %w", err)
	}
	if model.APISecret, err = r.sealer.Seal(creds.APISecret); err != nil {
		return fmt.Errorf("seal api secret: %w", err)
	}
	if model.WebhookSecret, err = r.sealer.Seal(creds.WebhookSecret); err != nil {
		return fmt.Errorf("seal webhook secret: %w", err)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"store_url", "api_key", "api_secret", "webhook_secret", "is_enabled", "updated_at",
		}),
	}).Create(model).Error
}

func (r *GormCredentialsRepository) open(model *models.PlatformCredentialsModel) (*integration.PlatformCredentials, error) {
	creds := model.ToDomain()
	var err error
	if creds.APIKey, err = r.sealer.Open(model.APIKey); err != nil {
		return nil, fmt.Errorf("open api key of %s: %w", model.Platform, err)
	}
	if creds.APISecret, err = r.sealer.Open(model.APISecret); err != nil {
		return nil, fmt.Errorf("open api secret of %s: %w", model.Platform, err)
	}
	if creds.WebhookSecret, err = r.sealer.Open(model.WebhookSecret); err != nil {
		return nil, fmt.Errorf("open webhook secret of %s: %w", model.Platform, err)
	}
	return creds, nil
}

// Ensure GormCredentialsRepository implements integration.CredentialsRepository
var _ integration.CredentialsRepository = (*GormCredentialsRepository)(nil)
