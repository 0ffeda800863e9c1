// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. The schema lives in the migrations
// directory and is applied with goose.
package postgres
