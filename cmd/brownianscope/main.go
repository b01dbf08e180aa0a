package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"BrownianScope/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("brownianscope failed")
		os.Exit(1)
	}
}
