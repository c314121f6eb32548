package main

import "github.com/ftl/lwplot/cmd"

func main() {
	cmd.Execute()
}
