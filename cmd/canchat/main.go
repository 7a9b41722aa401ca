package main

import (
	"flag"
	"log"

	"github.com/XenomLight/canChat/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	if err := app.Run(*configPath); err != nil {
		log.Fatalln(err)
	}
}
