package main

import (
	"github.com/canermastan/hotel-operations/cmd"
)

func main() {
	cmd.Execute()
}
