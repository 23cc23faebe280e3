package main

import "github.com/pfrederiksen/club-fixtures/internal/cli"

func main() {
	cli.Execute()
}
