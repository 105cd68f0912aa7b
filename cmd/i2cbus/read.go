package main

import (
	"context"
	"encoding/hex"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbus/cmd/i2cbus/console"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "read a value from a device register",
	Flags: append(busFlags(),
		&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "slave address", Required: true},
		&cli.StringFlag{Name: "reg", Aliases: []string{"r"}, Usage: "register to read from"},
		&cli.StringFlag{Name: "width", Aliases: []string{"w"}, Value: "8", Usage: "value width (8, 16, s16, 24, s24, block, i2cblock)"},
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

		// a plain byte read when no register is given
		if !c.IsSet("reg") {
			v, err := bus.ReadByte(ctx, addr)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Printf("%#02x\n", v)
			return nil
		}
		reg, err := parseReg(c.String("reg"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}

		switch c.String("width") {
		case "8":
			v, err := bus.ReadRegU8(ctx, addr, reg)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Printf("%#02x (%d)\n", v, v)
		case "16":
			v, err := bus.ReadRegU16(ctx, addr, reg)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Printf("%#04x (%d)\n", v, v)
		case "s16":
			v, err := bus.ReadRegS16(ctx, addr, reg)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Printf("%d\n", v)
		case "24":
			v, err := bus.ReadRegU24(ctx, addr, reg)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Printf("%#06x (%d)\n", v, v)
		case "s24":
			v, err := bus.ReadRegS24(ctx, addr, reg)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Printf("%d\n", v)
		case "block":
			data, err := bus.ReadBlock(ctx, addr, reg)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Print(hex.Dump(data))
		case "i2cblock":
			data, err := bus.ReadI2CBlock(ctx, addr, reg)
			if err != nil {
				return console.Exit(1, "read error: %s", console.Red(err))
			}
			console.Print(hex.Dump(data))
		default:
			return console.Exit(1, "unknown width %q", c.String("width"))
		}
		return nil
	},
}
