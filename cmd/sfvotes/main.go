package main

import "sfvotes/cmd/sfvotes/commands"

func main() {
	commands.Execute()
}
