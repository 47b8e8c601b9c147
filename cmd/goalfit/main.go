package main

import "goalfit/internal/cli"

func main() {
	cli.Execute()
}
