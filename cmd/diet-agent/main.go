package main

import "diet-agent/internal/cli"

func main() {
	cli.Execute()
}
