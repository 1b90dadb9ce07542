// Package domain contains the core business entities and validation rules
// of the application, independent of any storage backend or delivery
// mechanism.
package domain
