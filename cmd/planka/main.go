// Package main is the single-binary entrypoint for Planka.
package main

import "github.com/planka-fit/planka/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
