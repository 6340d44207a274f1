package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/backend/internal/domain/integration"
)

func strPtr(s string) *string { return &s }

func TestCredentialsService_List_MasksSecrets(t *testing.T) {
	repo := new(MockCredentialsRepository)
	repo.On("FindAll", mock.Anything).Return([]integration.PlatformCredentials{
		{
			Platform:      integration.PlatformShopify,
			StoreURL:      "https://demo.myshopify.com",
			APIKey:        "shpat_123",
			WebhookSecret: "whsec",
			IsEnabled:     true,
		},
	}, nil)
	svc := NewCredentialsService(repo, nil)

	list, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, list, len(integration.AllPlatforms()))
	for _, c := range list {
		if c.Platform == integration.PlatformShopify {
			assert.True(t, c.Configured)
			assert.True(t, c.HasAPIKey)
			assert.False(t, c.HasAPISecret)
			assert.True(t, c.HasWebhookSecret)
			assert.Equal(t, "Shopify", c.PlatformDisplayName)
			continue
		}
		assert.False(t, c.Configured, c.Platform)
	}
}

func TestCredentialsService_Save_KeepsSecretsLeftNil(t *testing.T) {
	repo := new(MockCredentialsRepository)
	repo.On("FindByPlatform", mock.Anything, integration.PlatformWooCommerce).Return(&integration.PlatformCredentials{
		Platform:      integration.PlatformWooCommerce,
		StoreURL:      "https://old.example.com",
		APIKey:        "ck_old",
		APISecret:     "cs_old",
		WebhookSecret: "wh_old",
	}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *integration.PlatformCredentials) bool {
		return c.StoreURL == "https://shop.example.com" &&
			c.APIKey == "ck_new" &&
			c.APISecret == "cs_old" &&
			c.WebhookSecret == "" &&
			c.IsEnabled
	})).Return(nil)
	svc := NewCredentialsService(repo, nil)

	resp, err := svc.Save(context.Background(), integration.PlatformWooCommerce, SaveCredentialsInput{
		StoreURL:      " https://shop.example.com ",
		APIKey:        strPtr("ck_new"),
		WebhookSecret: strPtr(""),
		IsEnabled:     true,
	})

	require.NoError(t, err)
	assert.True(t, resp.HasAPIKey)
	assert.True(t, resp.HasAPISecret)
	assert.False(t, resp.HasWebhookSecret)
	assert.NotNil(t, resp.UpdatedAt)
	repo.AssertExpectations(t)
}

func TestCredentialsService_Save_Validation(t *testing.T) {
	t.Run("unsupported platform", func(t *testing.T) {
		svc := NewCredentialsService(new(MockCredentialsRepository), nil)
		_, err := svc.Save(context.Background(), "ebay", SaveCredentialsInput{})
		assert.ErrorIs(t, err, integration.ErrPlatformUnsupported)
	})

	t.Run("enabled without store url", func(t *testing.T) {
		repo := new(MockCredentialsRepository)
		repo.On("FindByPlatform", mock.Anything, integration.PlatformMagento).
			Return(nil, integration.ErrCredentialsNotFound)
		svc := NewCredentialsService(repo, nil)

		_, err := svc.Save(context.Background(), integration.PlatformMagento, SaveCredentialsInput{IsEnabled: true})

		assert.ErrorIs(t, err, integration.ErrCredentialsInvalidURL)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
