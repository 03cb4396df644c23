package main

import (
	"os"

	"github.com/HealthDash/HealthDash/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
