// Command debate runs a cross-model critique and revision loop between the
// claude and codex CLIs.
package main

import "github.com/papapumpkin/debate/cmd"

func main() {
	cmd.Execute()
}
