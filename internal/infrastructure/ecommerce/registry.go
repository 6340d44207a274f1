package ecommerce

import (
	"sort"

	"github.com/orderhub/backend/internal/domain/integration"
)

// Adapter is both sides of one platform integration
type Adapter interface {
	integration.WebhookPlatform
	integration.StatusPushClient
}

// Registry holds one adapter per supported platform
type Registry struct {
	adapters map[integration.PlatformCode]Adapter
}

// NewRegistry builds adapters for every supported platform with a shared client configuration
func NewRegistry(config ClientConfig) (*Registry, error) {
	woo, err := NewWooCommerceAdapter(config)
	if err != nil {
		return nil, err
	}
	shopify, err := NewShopifyAdapter(config)
	if err != nil {
		return nil, err
	}
	presta, err := NewPrestaShopAdapter(config)
	if err != nil {
		return nil, err
	}
	opencart, err := NewOpenCartAdapter(config)
	if err != nil {
		return nil, err
	}
	magento, err := NewMagentoAdapter(config)
	if err != nil {
		return nil, err
	}
	return NewRegistryFrom(woo, shopify, presta, opencart, magento), nil
}

// NewRegistryFrom builds a registry from explicit adapters
func NewRegistryFrom(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[integration.PlatformCode]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Platform()] = a
	}
	return r
}

// Webhook returns the inbound adapter of a platform
func (r *Registry) Webhook(platform integration.PlatformCode) (integration.WebhookPlatform, bool) {
	a, ok := r.adapters[platform]
	return a, ok
}

// PushClient returns the outbound client of a platform
func (r *Registry) PushClient(platform integration.PlatformCode) (integration.StatusPushClient, bool) {
	a, ok := r.adapters[platform]
	return a, ok
}

// Platforms lists the registered platforms in a stable order
func (r *Registry) Platforms() []integration.PlatformCode {
	out := make([]integration.PlatformCode, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
