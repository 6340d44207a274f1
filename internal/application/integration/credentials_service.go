package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orderhub/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// CredentialsService manages platform connection settings for operators.
// Secrets go in and never come back out.
type CredentialsService struct {
	repo   integration.CredentialsRepository
	logger *zap.Logger
}

// NewCredentialsService creates a new CredentialsService
func NewCredentialsService(repo integration.CredentialsRepository, logger *zap.Logger) *CredentialsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialsService{repo: repo, logger: logger}
}

// List returns one entry per supported platform, configured or not
func (s *CredentialsService) List(ctx context.Context) ([]CredentialsResponse, error) {
	stored, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	byPlatform := make(map[integration.PlatformCode]*integration.PlatformCredentials, len(stored))
	for i := range stored {
		byPlatform[stored[i].Platform] = &stored[i]
	}

	platforms := integration.AllPlatforms()
	out := make([]CredentialsResponse, 0, len(platforms))
	for _, p := range platforms {
		if c, ok := byPlatform[p]; ok {
			out = append(out, ToCredentialsResponse(c))
			continue
		}
		out = append(out, CredentialsResponse{
			Platform:            p,
			PlatformDisplayName: p.DisplayName(),
		})
	}
	return out, nil
}

// Save replaces the settings of a platform, keeping stored secrets the input leaves nil
func (s *CredentialsService) Save(ctx context.Context, platform integration.PlatformCode, in SaveCredentialsInput) (*CredentialsResponse, error) {
	if !platform.IsValid() {
		return nil, fmt.Errorf("%w: %q", integration.ErrPlatformUnsupported, platform)
	}

	creds := &integration.PlatformCredentials{Platform: platform}
	existing, err := s.repo.FindByPlatform(ctx, platform)
	switch {
	case err == nil:
		*creds = *existing
	case errors.Is(err, integration.ErrCredentialsNotFound):
	default:
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	creds.StoreURL = strings.TrimSpace(in.StoreURL)
	creds.IsEnabled = in.IsEnabled
	if in.APIKey != nil {
		creds.APIKey = strings.TrimSpace(*in.APIKey)
	}
	if in.APISecret != nil {
		creds.APISecret = strings.TrimSpace(*in.APISecret)
	}
	if in.WebhookSecret != nil {
		creds.WebhookSecret = strings.TrimSpace(*in.WebhookSecret)
	}
	creds.UpdatedAt = time.Now()

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, creds); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Info("Platform credentials saved",
		zap.String("platform", string(platform)),
		zap.Bool("enabled", creds.IsEnabled),
		zap.Bool("has_webhook_secret", creds.WebhookSecret != ""))

	resp := ToCredentialsResponse(creds)
	return &resp, nil
}
