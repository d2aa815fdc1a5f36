package main

import "github.com/notargets/goelastic/cmd"

func main() {
	cmd.Execute()
}
