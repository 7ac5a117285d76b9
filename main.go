package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/farol-inclusivo/farol-matcher/cmd"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
