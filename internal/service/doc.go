// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The service layer sits between the HTTP API and the persistence backends.
// It receives its repository through constructor injection, translates the
// repository's absent-value results into application-level sentinel errors,
// and provides meaningful error context for API responses. It depends on
// domain entities and the repository contract, never on a specific backend
// implementation.
package service
