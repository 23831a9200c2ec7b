package main

import "github.com/Flames4fun/csl-core/cli"

func main() {
	cli.Execute()
}
