// Package database builds Postgres connection strings and opens short-lived connections.
//
// The price store opens one connection per operation and closes it when the
// operation finishes, so an idle scheduler holds no database connections.
package database
