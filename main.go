package main

import "github.com/robbyt/roml/cmd"

func main() {
	cmd.Execute()
}
