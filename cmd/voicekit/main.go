// Command voicekit manages the reference voice library used for voice
// cloning.
//
// Usage:
//
//	voicekit [flags] <command> [args]
//
// Commands:
//
//	add          - import a recording as a voice
//	mix          - layer background music under a voice
//	list         - list voices in the library
//	validate     - check candidate files for suitability
//	init-config  - write a default config file
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
