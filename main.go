package main

import "library-backend/internal/commands"

func main() {
	commands.Execute()
}
