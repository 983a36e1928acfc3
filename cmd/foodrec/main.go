package main

import "foodrec/internal/cli"

func main() {
	cli.Execute()
}
