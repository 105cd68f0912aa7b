package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbus/cmd/i2cbus/console"
)

var pecCmd = cli.Command{
	Name:  "pec",
	Usage: "toggle packet error checking for a device",
	Flags: append(busFlags(),
		&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "slave address", Required: true},
		&cli.BoolFlag{Name: "off", Usage: "disable instead of enable"},
	),
	Action: func(c *cli.Context) error {
		bus, err := openBus(c)
		if err != nil {
			return console.Exit(1, "could not open bus: %s", console.Red(err))
		}
		defer func() { _ = bus.Close() }()

		addr, err := parseAddr(c.String("addr"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		enabled := !c.Bool("off")
		if err := bus.SetPEC(ctx, addr, enabled); err != nil {
			return console.Exit(1, "control error: %s", console.Red(err))
		}
		console.PInfof(console.PictoPlug, "PEC=%s for %s", console.White(enabled), console.White(c.String("addr")))
		return nil
	},
}
