//go:build tools

// Package tools pins build-time code generators in go.mod so `go mod tidy`
// doesn't drop them; nothing here is part of the simulator's runtime graph.
package tools

import (
	_ "golang.org/x/tools/cmd/stringer"
)
