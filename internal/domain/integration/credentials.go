package integration

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PlatformCredentials holds the connection settings of one platform.
// They are read on every push and every signature check so rotations apply immediately.
type PlatformCredentials struct {
	Platform      PlatformCode
	StoreURL      string
	APIKey        string
	APISecret     string
	WebhookSecret string
	IsEnabled     bool
	UpdatedAt     time.Time
}

// Validate checks the credential fields
func (c *PlatformCredentials) Validate() error {
	if !c.Platform.IsValid() {
		return fmt.Errorf("%w: %q", ErrPlatformUnsupported, c.Platform)
	}
	if c.StoreURL == "" {
		if c.IsEnabled {
			return fmt.Errorf("%w: store url is required when enabled", ErrCredentialsInvalidURL)
		}
		return nil
	}
	u, err := url.Parse(c.StoreURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrCredentialsInvalidURL, c.StoreURL)
	}
	return nil
}

// BaseURL returns the store URL without a trailing slash
func (c *PlatformCredentials) BaseURL() string {
	return strings.TrimRight(c.StoreURL, "/")
}

// CanPush reports whether outbound calls may be made with these credentials
func (c *PlatformCredentials) CanPush() bool {
	return c.IsEnabled && c.StoreURL != ""
}

// CredentialsRepository is the platform credentials store
type CredentialsRepository interface {
	// FindByPlatform returns ErrCredentialsNotFound when nothing is stored
	FindByPlatform(ctx context.Context, platform PlatformCode) (*PlatformCredentials, error)

	// FindAll returns every stored credential set
	FindAll(ctx context.Context) ([]PlatformCredentials, error)

	// Save creates or replaces the credentials of a platform
	Save(ctx context.Context, creds *PlatformCredentials) error
}
