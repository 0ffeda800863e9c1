// Package config handles configuration loading, parsing, and validation
// from .env files, an optional YAML file and environment variables. It provides
// type-safe access to the settings needed by the HTTP server, the database
// layer, token signing and the notification workers.
package config
