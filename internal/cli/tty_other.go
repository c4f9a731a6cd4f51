//go:build !linux

package cli

import "io"

// isTerminal always reports false, sessions read stdin line by line.
func isTerminal(io.Reader) bool { return false }
