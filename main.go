package main

import "projection-engine/cmd"

func main() {
	cmd.Execute()
}
