package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbus/cmd/i2cbus/console"
)

var scanCmd = cli.Command{
	Name:  "scan",
	Usage: "probe an address window and print a reachability grid",
	Flags: append(busFlags(),
		&cli.UintFlag{Name: "first", Value: 0x03, Usage: "first address to probe"},
		&cli.UintFlag{Name: "last", Value: 0x77, Usage: "last address to probe"},
	),
	Action: func(c *cli.Context) error {
		bus, err := openBus(c)
		if err != nil {
			return console.Exit(1, "could not open bus: %s", console.Red(err))
		}
		defer func() { _ = bus.Close() }()

		first := byte(c.Uint("first"))
		last := byte(c.Uint("last"))
		if last > 0x7F {
			last = 0x7F
		}
		if first > last {
			return console.Exit(1, "invalid scan window %#02x-%#02x", first, last)
		}

		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		found := 0
		console.Print("     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f")
		for row := byte(0); row <= 0x70; row += 0x10 {
			console.Printf("%02x: ", row)
			for col := byte(0); col < 0x10; col++ {
				addr := row + col
				switch {
				case addr < first || addr > last:
					console.Printf("   ")
				case bus.IsReachable(ctx, addr):
					console.Printf("%s ", console.Green(addrString(addr)))
					found++
				default:
					console.Printf("%s ", console.Faint("--"))
				}
			}
			console.Print("")
		}
		console.PInfof(console.PictoSearch, "%s device(s) found on bus %s", console.White(found), console.White(bus.Number()))
		return nil
	},
}

func addrString(addr byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[addr>>4], digits[addr&0x0F]})
}
