package main

import "github.com/gutenmorgen/gm/cmd"

func main() {
	cmd.Execute()
}
