package main

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbus/cmd/i2cbus/console"
)

var writeCmd = cli.Command{
	Name:  "write",
	Usage: "write a value to a device register",
	Flags: append(busFlags(),
		&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "slave address", Required: true},
		&cli.StringFlag{Name: "reg", Aliases: []string{"r"}, Usage: "register to write to"},
		&cli.StringFlag{Name: "value", Aliases: []string{"v"}, Usage: "byte or word value", Required: false},
		&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "hex bytes for a block write (e.g. '01FF23')"},
		&cli.BoolFlag{Name: "word", Usage: "write a 16-bit word instead of a byte"},
		&cli.BoolFlag{Name: "quick", Usage: "issue a quick transaction with the value bit"},
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
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
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("write to the bus, are you sure?")
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if answer != console.Yes {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))

		if c.Bool("quick") {
			var value uint64
			if c.IsSet("value") {
				value, err = parseValue(c.String("value"), 1)
				if err != nil {
					return console.Exit(1, "%s", console.Red(err))
				}
			}
			if err := bus.WriteQuick(ctx, addr, byte(value)); err != nil {
				return console.Exit(1, "write error: %s", console.Red(err))
			}
			return nil
		}

		if c.IsSet("data") {
			reg, err := parseReg(c.String("reg"))
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			data, err := hex.DecodeString(c.String("data"))
			if err != nil {
				return console.Exit(1, "invalid data: %s", console.Red(err))
			}
			if err := bus.WriteBlock(ctx, addr, reg, data); err != nil {
				return console.Exit(1, "write error: %s", console.Red(err))
			}
			console.PInfof(console.PictoPin, "%s byte(s) written to %s reg %s",
				console.White(len(data)), console.White(c.String("addr")), console.White(c.String("reg")))
			return nil
		}

		if !c.IsSet("reg") {
			value, err := parseValue(c.String("value"), 8)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if err := bus.WriteByte(ctx, addr, byte(value)); err != nil {
				return console.Exit(1, "write error: %s", console.Red(err))
			}
			return nil
		}

		reg, err := parseReg(c.String("reg"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		if c.Bool("word") {
			value, err := parseValue(c.String("value"), 16)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if err := bus.WriteRegU16(ctx, addr, reg, uint16(value)); err != nil {
				return console.Exit(1, "write error: %s", console.Red(err))
			}
			return nil
		}
		value, err := parseValue(c.String("value"), 8)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		if err := bus.WriteRegU8(ctx, addr, reg, byte(value)); err != nil {
			return console.Exit(1, "write error: %s", console.Red(err))
		}
		return nil
	},
}

func parseValue(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}
