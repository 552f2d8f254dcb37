package main

import "github.com/crudforge/crudforge/cmd/crudforge/commands"

func main() {
	commands.Execute()
}
