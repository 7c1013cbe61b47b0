package main

import "github.com/projectpleasure/pleasure/internal/cmd"

func main() {
	cmd.Execute()
}
