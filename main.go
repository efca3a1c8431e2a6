package main

import (
	"log"

	"github.com/ridewire/matchd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
