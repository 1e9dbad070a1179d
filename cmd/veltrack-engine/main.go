package main

import (
	"os"

	"github.com/veltrack-io/veltrack/cmd/veltrack-engine/app"
)

func main() {
	if err := app.NewApp().Run(); err != nil {
		os.Exit(1)
	}
}
