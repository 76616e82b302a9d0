package main

import "github.com/vendo-machines/vendo/internal/cli"

func main() {
	cli.Execute()
}
