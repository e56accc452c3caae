package main

import (
	"os"

	"github.com/tillberg/autorestart"

	"github.com/soyeahso/reactor/internal/cli"
)

func main() {
	if os.Getenv("REACTOR_AUTORESTART") == "1" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
