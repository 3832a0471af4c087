package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(defaultServices).Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
