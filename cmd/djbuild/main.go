// Command djbuild loads a catalog YAML file and runs a single build
// against it, either for a node id (spec §4.4) or a SQL query over the
// virtual `metrics` table (spec §4.5), printing the resulting
// CreateQuery. It is the ambient CLI/test-tooling surface SPEC_FULL.md §2
// adds around the core; it does not execute the emitted query.
package main

import (
	"fmt"
	"os"

	"github.com/zzzzz1st/datajunction/cmd/djbuild/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "djbuild:", err)
		os.Exit(1)
	}
}
