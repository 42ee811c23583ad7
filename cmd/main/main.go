package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := setupCommands().Execute(); err != nil {
		log.Error().Msgf("%v", err)
		os.Exit(1)
	}
}
