package sh

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ksz8863/pkg/ksz8863"
)

type identity struct {
	ChipID   string `json:"chip_id"`
	Match    bool   `json:"match"`
	Revision int    `json:"revision"`
}

type regValues struct {
	Addr   int   `json:"addr"`
	Values []int `json:"values"`
}

var (
	// ProbeCmd attaches the configured device and runs bring-up.
	ProbeCmd = ishell.Cmd{
		Name:    "probe",
		Aliases: []string{"attach"},
		Help:    "attach the bus and identify the chip",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if err := s.Attach(); err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s identified\n", s.Config.Name)
		},
	}

	// DetachCmd closes the device.
	DetachCmd = ishell.Cmd{
		Name:    "detach",
		Aliases: []string{"d"},
		Help:    "release the attached device",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Detach()
		},
	}

	// StateCmd prints the bring-up state.
	StateCmd = ishell.Cmd{
		Name:    "state",
		Aliases: []string{"s"},
		Help:    "show the bring-up state",
		Func: MustBeAttached(func(c *ishell.Context, dev *ksz8863.Device) {
			state := dev.State().String()
			ShellFrom(c).Print(c, state, map[string]string{"state": state})
		}),
	}

	// IDCmd reads and verifies the chip identity.
	IDCmd = ishell.Cmd{
		Name:    "id",
		Aliases: []string{"i"},
		Help:    "read and verify the chip identity",
		Func: MustBeAttached(func(c *ishell.Context, dev *ksz8863.Device) {
			id, err := dev.Identify()
			if err != nil {
				c.Err(err)
				return
			}
			result := identity{ChipID: id.String()}
			text := fmt.Sprintf("%s: not a KSZ8863", id)
			if rev, err := dev.VerifyIdentity(id); err == nil {
				result.Match, result.Revision = true, int(rev)
				text = fmt.Sprintf("%s: KSZ8863 revision %d", id, rev)
			}
			ShellFrom(c).Print(c, text, &result)
		}),
	}

	// ReadCmd reads registers.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "read registers: ADDR [COUNT]",
		Func: MustBeAttached(func(c *ishell.Context, dev *ksz8863.Device) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ADDR required"))
				return
			}
			addr, err := ParseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			count := 1
			if len(c.Args) > 1 {
				if count, err = strconv.Atoi(c.Args[1]); err != nil {
					c.Err(fmt.Errorf("invalid COUNT: %v", err))
					return
				}
			}
			vals, err := dev.ReadRegs(ksz8863.Register(addr), count)
			if err != nil {
				c.Err(err)
				return
			}
			result := regValues{Addr: int(addr), Values: make([]int, len(vals))}
			for n, val := range vals {
				result.Values[n] = int(val)
			}
			ShellFrom(c).Print(c, FormatRegs(ksz8863.Register(addr), vals), &result)
		}),
	}

	// WriteCmd writes registers.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "write registers: ADDR VALUE...",
		Func: MustBeAttached(func(c *ishell.Context, dev *ksz8863.Device) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ADDR and VALUE required"))
				return
			}
			addr, err := ParseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			vals := make([]byte, len(c.Args)-1)
			for n, arg := range c.Args[1:] {
				if vals[n], err = ParseByte(arg); err != nil {
					c.Err(err)
					return
				}
			}
			if err = dev.WriteRegs(ksz8863.Register(addr), vals); err != nil {
				c.Err(err)
			}
		}),
	}

	// StartCmd tries to start switching.
	StartCmd = ishell.Cmd{
		Name: "start",
		Help: "start the switch after identification",
		Func: MustBeAttached(func(c *ishell.Context, dev *ksz8863.Device) {
			if err := dev.Start(); err != nil {
				c.Err(err)
			}
		}),
	}
)
