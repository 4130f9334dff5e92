// Command cahirc compiles a Dialect project into Target (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/Aelto/tw3-cahirc-language/cmd/cahirc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
