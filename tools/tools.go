//go:build tools

// Package tools pins development tooling used by prodcons.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
