// Command localsearch indexes and searches a project's code and
// documentation, either as a one-shot CLI or as a tool-calling MCP server.
package main

import "github.com/localsearch/localsearch/internal/cli"

func main() {
	cli.Execute()
}
