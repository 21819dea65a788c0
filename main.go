package main

import (
	"github.com/data-eco/eco-go/cmd"
)

func main() {
	cmd.Execute()
}
