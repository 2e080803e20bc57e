package main

import (
	"log"

	"github.com/gigfair/matchengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
