// Package main is the entry point for the sqlagent CLI application.
// It provides a terminal front end for the SQL agent HTTP API.
package main

import (
	"sqlagent/cli/cmd"
)

// main is the entry point for the sqlagent CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
