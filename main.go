package main

import "github.com/agentic-research/gitsplit/cmd"

func main() {
	cmd.Execute()
}
