package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oisee/z80-core/pkg/crosscheck"
	"github.com/oisee/z80-core/pkg/inst"
)

// hexAddr is a 16-bit address flag. It accepts 0x100, 100h, $100 and plain
// hex digits.
type hexAddr uint16

var _ pflag.Value = (*hexAddr)(nil)

func (a *hexAddr) String() string {
	return fmt.Sprintf("0x%04X", uint16(*a))
}

func (a *hexAddr) Set(s string) error {
	t := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(t, "0x"):
		t = t[2:]
	case strings.HasPrefix(t, "$"):
		t = t[1:]
	case strings.HasSuffix(t, "h"):
		t = t[:len(t)-1]
	}
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q", s)
	}
	*a = hexAddr(v)
	return nil
}

func (a *hexAddr) Type() string {
	return "address"
}

// maskFlag selects a crosscheck.FlagMask by name.
type maskFlag crosscheck.FlagMask

var masks = map[string]crosscheck.FlagMask{
	"none":  crosscheck.DeadNone,
	"undoc": crosscheck.DeadUndoc,
	"all":   crosscheck.DeadAll,
}

func (m *maskFlag) String() string {
	for name, v := range masks {
		if v == crosscheck.FlagMask(*m) {
			return name
		}
	}
	return fmt.Sprintf("%02X", uint8(*m))
}

func (m *maskFlag) Set(s string) error {
	v, ok := masks[strings.ToLower(s)]
	if !ok {
		return fmt.Errorf("unknown mask %q (want none, undoc or all)", s)
	}
	*m = maskFlag(v)
	return nil
}

func (m *maskFlag) Type() string {
	return "mask"
}

// contextFlag selects an inst.Context by name.
type contextFlag inst.Context

func (c *contextFlag) String() string {
	return strings.ToLower(inst.Context(*c).String())
}

func (c *contextFlag) Set(s string) error {
	for ctx := inst.Base; ctx < inst.ContextCount; ctx++ {
		if strings.EqualFold(ctx.String(), s) {
			*c = contextFlag(ctx)
			return nil
		}
	}
	return fmt.Errorf("unknown context %q", s)
}

func (c *contextFlag) Type() string {
	return "context"
}
