package main

import (
	"github.com/joho/godotenv"

	"github.com/tekmiz/tekmiz-go/internal/cli"
)

func main() {
	// Optional .env support; absence is fine
	_ = godotenv.Load()

	cli.Execute()
}
