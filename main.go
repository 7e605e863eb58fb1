// Package main is the entry point for the runic CLI.
package main

import "runic.dev/pkg/runic/cmd"

func main() {
	cmd.Execute()
}
