/*
JavaScript obfuscator (entry point).

Parses JavaScript source, runs it through the staged transformation
pipeline, and writes out obfuscated code. See cmd/go-js-obfuscator/cmd
for the command tree.
*/
package main

import (
	"github.com/whit3rabbit/jsmixer/cmd/go-js-obfuscator/cmd"
)

func main() {
	cmd.Execute()
}
