// Package models holds the GORM row types for orders, order sync logs and
// platform credentials, and their conversions to and from domain entities.
//
// Order rows split their columns in two: the ingestion path rewrites only
// what a platform sends, operators own status, comment, assignment and
// payment.
package models
