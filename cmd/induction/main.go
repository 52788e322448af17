// Package main is the single-binary entrypoint for the induction service.
package main

import "github.com/kmra/induction/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
