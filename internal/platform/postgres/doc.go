// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store and internal/task packages.
// It handles query execution, error mapping and schema migrations.
package postgres
