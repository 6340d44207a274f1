package ecommerce

import (
	"errors"
	"time"
)

// ClientConfig holds the HTTP settings shared by all platform adapters
type ClientConfig struct {
	// Timeout bounds a single outbound request
	Timeout time.Duration
	// MaxResponseSize caps how many bytes of a platform response are read
	MaxResponseSize int64
	// UserAgent is sent with every outbound request
	UserAgent string
	// ShopifyAPIVersion is the Admin API version used for Shopify calls
	ShopifyAPIVersion string
}

const (
	// defaultMaxResponseSize is the maximum allowed response size from a platform API (10MB)
	defaultMaxResponseSize = 10 * 1024 * 1024
	defaultTimeout         = 15 * time.Second
	defaultUserAgent       = "orderhub/1.0"
	defaultShopifyVersion  = "2024-10"
)

// Errors for adapter configuration
var (
	ErrClientConfigInvalidTimeout = errors.New("ecommerce: timeout must not be negative")
	ErrClientConfigInvalidMaxSize = errors.New("ecommerce: max response size must not be negative")
)

// DefaultClientConfig returns a configuration with defaults
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:           defaultTimeout,
		MaxResponseSize:   defaultMaxResponseSize,
		UserAgent:         defaultUserAgent,
		ShopifyAPIVersion: defaultShopifyVersion,
	}
}

// Validate checks the configuration and fills zero values with defaults
func (c *ClientConfig) Validate() error {
	if c.Timeout < 0 {
		return ErrClientConfigInvalidTimeout
	}
	if c.MaxResponseSize < 0 {
		return ErrClientConfigInvalidMaxSize
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseSize == 0 {
		c.MaxResponseSize = defaultMaxResponseSize
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.ShopifyAPIVersion == "" {
		c.ShopifyAPIVersion = defaultShopifyVersion
	}
	return nil
}
