// Command rolodex manages a local contact book.
package main

import "github.com/mesh-intelligence/rolodex/internal/cli"

func main() {
	cli.Execute()
}
