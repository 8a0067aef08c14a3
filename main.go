package main

import (
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"mealsteals/dealworker/cmd"
	"mealsteals/dealworker/logger"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	cmd.Execute()
}
