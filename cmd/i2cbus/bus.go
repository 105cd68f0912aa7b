package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/i2cbus"
	"github.com/mklimuk/i2cbus/adapter"
	"github.com/mklimuk/i2cbus/periph"
	"github.com/mklimuk/i2cbus/sysfs"
)

func busFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "bus",
			Aliases: []string{"b"},
			Usage:   "bus number or configured alias",
			Value:   "1",
		},
		&cli.StringFlag{
			Name:    "transport",
			Aliases: []string{"t"},
			Usage:   "bus transport (dev, periph, mcp2221, nanopi)",
		},
	}
}

// openBus resolves the bus flag through the config file and wires the
// selected transport into a managed bus.
func openBus(c *cli.Context) (*i2cbus.Bus, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	number, err := cfg.ResolveBus(c.String("bus"))
	if err != nil {
		return nil, err
	}
	transport := c.String("transport")
	if transport == "" {
		transport = cfg.Transport
	}
	switch transport {
	case "", "dev":
		return sysfs.NewBus(number), nil
	case "periph":
		return periph.NewBus(number), nil
	case "mcp2221":
		return i2cbus.New(number, adapter.NewMCP2221()), nil
	case "nanopi":
		return i2cbus.New(number, adapter.NewGobot(nanopi.NewNeoAdaptor())), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func parseAddr(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if v > 0x7F {
		return 0, fmt.Errorf("address %#02x out of 7-bit range", v)
	}
	return byte(v), nil
}

func parseReg(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", s, err)
	}
	return byte(v), nil
}
