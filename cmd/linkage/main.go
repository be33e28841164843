// Command linkage solves planar linkages and manages recorded trajectories.
package main

import "github.com/mesh-intelligence/linkage/internal/cli"

func main() {
	cli.Execute()
}
