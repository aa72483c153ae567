package main

import (
	"github.com/aaronmussig/sarand/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
