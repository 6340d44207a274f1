// Package integration contains the Integration bounded context.
// This context manages order intake from external e-commerce platforms and the
// status updates sent back to them.
//
// Key concepts:
//   - PlatformCode: the supported storefronts (WooCommerce, Shopify, PrestaShop, OpenCart, Magento)
//   - StatusTable: immutable inbound/outbound status vocabulary per platform
//   - NormalizedOrder: the platform-neutral record produced from a webhook payload
//   - WebhookPlatform: port for decoding, verifying and normalizing inbound deliveries
//   - StatusPushClient: port for pushing an internal status change to a platform
//   - PlatformCredentials: per-platform store URL, API keys and webhook secret
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
