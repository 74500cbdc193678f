package main

import "github.com/brogergvhs/parkdl/cmd"

func main() {
	cmd.Execute()
}
