package main

import "github.com/circuitsmith/circuitsmith/cmd/circuitsmith/cmd"

func main() {
	cmd.Execute()
}
