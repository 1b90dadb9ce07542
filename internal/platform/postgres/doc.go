// Package postgres implements the task repository contract against a
// PostgreSQL server using the pgx stdlib driver. The server is assumed
// to be reachable already: construction performs no connection attempts
// and no retries, so an unreachable server surfaces on the first
// operation as a backend-unavailable error.
package postgres
