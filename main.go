package main

import "github.com/electr1fy0/jot/cmd"

func main() {
	cmd.Execute()
}
