// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

// main package for this project.
package main

import "github.com/mcp-hetzner/mcp-hetzner/cmd"

func main() {
	cmd.Execute()
}
