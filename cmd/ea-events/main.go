package main

import "github.com/pfrederiksen/ea-events/internal/cli"

func main() {
	cli.Execute()
}
