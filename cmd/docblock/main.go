package main

import "docblock/internal/cli"

func main() {
	cli.Execute()
}
