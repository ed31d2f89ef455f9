package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// Messages printed above the usage text.
const (
	msgInvalidRange   = "Invalid or missing port range."
	msgInvalidCommand = "Invalid command. Use -p or -n."
)

// legacyUsage renders the usage text for the single-dash syntax.
func legacyUsage(prog string) string {
	lines := []struct{ args, help string }{
		{"-p <port>", "Check if a port is available"},
		{"-p <start> <end>", "Check if a range of ports is available"},
		{"-n <port>", "Check if a port is available, free it if not"},
		{"-n <start> <end>", "Check if a range of ports is available, free them if not"},
		{"-ip <address> -p <start> <end>", "Bind-probe a range of ports on an address"},
		{"-l -p <start> <end>", "Bind-probe a range of ports on the loopback address"},
		{"-p <start> <end> -cidr <network/prefix>", "Bind-probe every address of a network"},
	}

	var b strings.Builder
	b.WriteString("Usage:\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "  %s %-40s (%s)\n", prog, l.args, l.help)
	}
	fmt.Fprintf(&b, "\nSubcommands with regular flags: %s check, %s free (see %s help)\n", prog, prog, prog)
	return b.String()
}

// ParseArgs turns the historical single-dash argument list (without the
// program name) into a validated ScanRequest.
//
// Recognized tokens:
//
//	-p <start> [end]    check, or bind-probe when combined with -ip/-l/-cidr
//	-n <start> [end]    check and free
//	-ip <address>       target address
//	-l                  target the loopback address
//	-cidr <net/prefix>  probe every address of the block
//
// Tokens may appear in any order. All failures are *model.UsageError; an
// empty Message means "print usage only".
func ParseArgs(args []string, loopback string) (*model.ScanRequest, error) {
	if len(args) < 2 {
		return nil, model.NewUsageError("")
	}

	var (
		modeFlag string
		rangeArg []string
		address  string
		addrFlag string
		cidr     string
	)

	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch tok {
		case "-p", "-n":
			if modeFlag != "" {
				return nil, model.NewUsageError(fmt.Sprintf("%s cannot be combined with %s.", tok, modeFlag))
			}
			modeFlag = tok
			for i+1 < len(args) && len(rangeArg) < 2 && !strings.HasPrefix(args[i+1], "-") {
				i++
				rangeArg = append(rangeArg, args[i])
			}

		case "-ip", "-l":
			if addrFlag != "" {
				return nil, model.NewUsageError(fmt.Sprintf("%s cannot be combined with %s.", tok, addrFlag))
			}
			addrFlag = tok
			if tok == "-l" {
				address = loopback
				continue
			}
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				return nil, model.NewUsageError("-ip requires an address.")
			}
			i++
			address = args[i]

		case "-cidr":
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				return nil, model.NewUsageError("-cidr requires a network/prefix value.")
			}
			i++
			cidr = args[i]

		default:
			if modeFlag == "" && strings.HasPrefix(tok, "-") {
				return nil, model.NewUsageError(msgInvalidCommand)
			}
			return nil, model.NewUsageError(fmt.Sprintf("Unexpected argument %q.", tok))
		}
	}

	if modeFlag == "" {
		return nil, model.NewUsageError(msgInvalidCommand)
	}

	portRange, err := parseRange(rangeArg)
	if err != nil {
		return nil, err
	}

	req := &model.ScanRequest{
		Address: address,
		CIDR:    cidr,
		Range:   portRange,
	}
	switch {
	case modeFlag == "-n":
		req.Mode = model.ModeCheckAndFree
	case address != "" || cidr != "":
		req.Mode = model.ModeRemoteCheck
	default:
		req.Mode = model.ModeCheck
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// parseRange parses one or two port arguments. A single value is a range
// of one port.
func parseRange(args []string) (model.PortRange, error) {
	if len(args) == 0 {
		return model.PortRange{}, model.NewUsageError(msgInvalidRange)
	}

	start, err := strconv.Atoi(args[0])
	if err != nil {
		return model.PortRange{}, &model.UsageError{Message: msgInvalidRange, Err: err}
	}
	r := model.SinglePort(start)
	if len(args) > 1 {
		r.End, err = strconv.Atoi(args[1])
		if err != nil {
			return model.PortRange{}, &model.UsageError{Message: msgInvalidRange, Err: err}
		}
	}

	if err := r.Validate(); err != nil {
		return model.PortRange{}, &model.UsageError{Message: msgInvalidRange, Err: err}
	}
	return r, nil
}

// legacyArgs is a root command line split into persistent flags and the
// single-dash tokens ParseArgs understands.
type legacyArgs struct {
	flags   []string
	rest    []string
	help    bool
	version bool
}

// splitLegacyArgs pulls the tokens that belong to fs out of args. A
// double-dash flag is taken with its value when it needs one; "-x"
// shorthands are only taken when fs defines them, so "-p" and "-l" stay
// with the legacy tokens. Help and version are recognised anywhere.
func splitLegacyArgs(fs *pflag.FlagSet, args []string) legacyArgs {
	var la legacyArgs
	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch tok {
		case "-h", "--help":
			la.help = true
			continue
		case "--version":
			la.version = true
			continue
		}

		var f *pflag.Flag
		switch {
		case strings.HasPrefix(tok, "--") && len(tok) > 2:
			name, _, _ := strings.Cut(tok[2:], "=")
			f = fs.Lookup(name)
		case len(tok) == 2 && tok[0] == '-':
			f = fs.ShorthandLookup(tok[1:])
		}
		if f == nil {
			la.rest = append(la.rest, tok)
			continue
		}

		la.flags = append(la.flags, tok)
		if f.NoOptDefVal == "" && !strings.Contains(tok, "=") && i+1 < len(args) {
			i++
			la.flags = append(la.flags, args[i])
		}
	}
	return la
}
