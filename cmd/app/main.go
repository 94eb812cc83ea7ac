package main

import "inventory-manager/internal/adapters/cli"

func main() {
	cli.Execute()
}
