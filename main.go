package main

import (
	"os"

	"github.com/shopkeep/shopkeep/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
