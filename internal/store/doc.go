// Package store defines the repository contract for task persistence and
// the error taxonomy shared by all storage backends. The interfaces here
// abstract the underlying storage mechanism from the application's core
// logic, so business rules stay independent of whether tasks live in
// memory, a single-file database, or a networked SQL server.
package store
