// Command conform runs upstream test modules against an alternative
// implementation and maintains the generated code it depends on.
package main

import (
	"os"

	"github.com/roach88/conform/internal/cli"
	_ "github.com/roach88/conform/internal/corpus"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
