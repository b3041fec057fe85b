// Command wasminspect is the CLI driver over the wasminspect core: decode
// a .wasm file and print its call graph, memory profile, capability and
// compatibility analysis in one of a few output formats.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
