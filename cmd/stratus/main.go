package main

import (
	"os"

	"stratus/internal/logger"
)

func main() {
	debug := false
	for _, arg := range os.Args[1:] {
		if arg == "--debug" || arg == "-d" {
			debug = true
		}
	}

	log := logger.NewLogger(debug)

	app, err := newApp(log)
	if err != nil {
		log.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	Execute(app)
}
