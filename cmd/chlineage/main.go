// Command chlineage extracts view lineage from a ClickHouse server.
package main

import (
	"os"

	"github.com/leapstack-labs/chlineage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
