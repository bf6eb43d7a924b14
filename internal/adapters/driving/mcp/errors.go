// Package mcp provides an MCP (Model Context Protocol) server adapter for gitsleuth.
// It lets AI assistants build search queries, extract and classify snippets,
// and browse the findings of past scans.
package mcp

import "errors"

// ErrMissingClassifier is returned when the classifier is not provided.
var ErrMissingClassifier = errors.New("mcp: classifier is required")

// ErrNoFindingStore is returned by findings tools when no store is configured.
var ErrNoFindingStore = errors.New("mcp: findings history is not configured")
