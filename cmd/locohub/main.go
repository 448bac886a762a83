// Command locohub segments gait recordings into phase-normalized cycles and validates
// phase-normalized datasets against biomechanical rules.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}
