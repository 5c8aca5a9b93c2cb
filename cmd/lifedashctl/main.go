package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	_ "time/tzdata"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
