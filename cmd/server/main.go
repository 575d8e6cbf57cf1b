package main

import (
	"fmt"
	"os"

	"github.com/coffeeshop/frontend-environment/cmd/server/root"
)

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
