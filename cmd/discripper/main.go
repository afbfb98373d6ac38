// Command discripper rips GameCube, Wii, DVD-Video and Audio CD discs to
// disk images.
package main

import (
	"fmt"
	"os"

	"github.com/discripper/discripper/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
