package main

import "github.com/andrescamacho/placement-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
