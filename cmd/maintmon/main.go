package main

import (
	"log"

	"github.com/MrSnakeDoc/maintmon/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ maintmon failed to start: %v", err)
	}
}
