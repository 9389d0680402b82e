package main

import (
	"etsetup/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Optional overrides (ETSETUP_HOME, ETSETUP_RADIOS_DIR, ...) from a
	// local .env file; absence is not an error.
	_ = godotenv.Load()
	cmd.Execute()
}
