// Package memory provides in-memory implementations of the driven storage
// ports. Nothing is persisted. Service, CLI and MCP tests use them in place
// of the TOML config and the sqlite finding store.
package memory
