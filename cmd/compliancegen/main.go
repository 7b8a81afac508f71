package main

import "github.com/fluohq/compliancegen/cmd/compliancegen/commands"

func main() {
	commands.Execute()
}
