// Package sh provides an ishell backed shell for diagnostic register access.
package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ksz8863/pkg/env"
	"github.com/robotalks/ksz8863/pkg/ksz8863"
)

// Shell wraps ishell with an attached device.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoAttach  bool

	Shell  *ishell.Shell
	Config *env.Config
	Device *ksz8863.Device
}

const (
	shellKey         = "$shell"
	unattachedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	errNotAttached = errors.New("not attached")

	commands = []*ishell.Cmd{
		&ProbeCmd,
		&DetachCmd,
		&StateCmd,
		&IDCmd,
		&ReadCmd,
		&WriteCmd,
		&StartCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unattachedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithAutoAttach sets AutoAttach.
func (s *Shell) WithAutoAttach(en bool) *Shell {
	s.AutoAttach = en
	return s
}

// Attach probes the device configured, replacing the current one.
// A device failing bring-up stays attached so its state can be shown.
func (s *Shell) Attach() error {
	s.Detach()
	dev, err := s.Config.Attach()
	if dev != nil {
		s.Device = dev
		s.Shell.SetPrompt(fmt.Sprintf("%s(%s) > ", s.Config.Name, dev.State()))
	}
	return err
}

// Detach closes the current device.
func (s *Shell) Detach() {
	if s.Device != nil {
		s.Device.Close()
		s.Device = nil
		s.Shell.SetPrompt(unattachedPrompt)
	}
}

// Print prints v as JSON if enabled, or text otherwise.
func (s *Shell) Print(c *ishell.Context, text string, v interface{}) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// MustBeAttached wraps command func requires a device.
func MustBeAttached(fn func(*ishell.Context, *ksz8863.Device)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		dev := ShellFrom(c).Device
		if dev == nil {
			c.Err(errNotAttached)
			return
		}
		fn(c, dev)
	}
}

// ParseByte parses a byte in decimal, hex (0x) or octal (0) form.
func ParseByte(s string) (byte, error) {
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}
	return byte(val), nil
}

// FormatRegs formats register values like "0x10: 01 02 03".
func FormatRegs(addr ksz8863.Register, vals []byte) string {
	var hex []string
	for _, val := range vals {
		hex = append(hex, fmt.Sprintf("%02x", val))
	}
	return fmt.Sprintf("0x%02x: %s", byte(addr), strings.Join(hex, " "))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoAttach {
		if err := s.Attach(); err != nil {
			if s.Device == nil || len(args) > 0 {
				log.Fatalf("attach %q failed: %v", s.Config.BusURL, err)
			}
			s.Shell.Printf("attach failed: %v\n", err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoAttach(true).Run(flag.Args()...)
}
