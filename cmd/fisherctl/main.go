package main

import (
	"github.com/fisherproject/fisher/cmd/fisherctl/cmd"
)

func main() {
	cmd.Execute()
}
