package main

import "github.com/arifwidianto/shift-management/cmd"

func main() {
	cmd.Execute()
}
