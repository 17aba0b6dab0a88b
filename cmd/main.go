package main

import (
	"log"

	"github.com/BIwashi/cangps/app/convert"
	"github.com/BIwashi/cangps/app/dump"
	"github.com/BIwashi/cangps/app/gpsinfo"
	"github.com/BIwashi/cangps/app/placemarks"
	"github.com/BIwashi/cangps/app/plot"
	"github.com/BIwashi/cangps/pkg/cli"
)

func main() {
	c := cli.NewCLI(
		"cangps",
		"Decode vehicle speed, engine speed and GPS telemetry from CAN captures.",
	)

	c.AddCommands(
		plot.NewCommand(),
		gpsinfo.NewCommand(),
		placemarks.NewCommand(),
		dump.NewCommand(),
		convert.NewCommand(),
	)

	if err := c.Run(); err != nil {
		log.Fatal(err)
	}
}
