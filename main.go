package main

import "github.com/lodestone-hq/vaultsync/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
