package main

import (
	"log"

	"econnect/cmd"
	_ "econnect/migrations"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
