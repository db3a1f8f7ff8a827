// rowkeep serves SQL tables described by declarative schemas through
// generic repositories, over HTTP and from the command line.
package main

import (
	"github.com/bitswalk/rowkeep/src/rowkeep/core"
)

func main() {
	core.Execute()
}
