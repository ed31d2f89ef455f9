package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// checkFlags holds the flag values for the check command.
type checkFlags struct {
	// address bind-probes the ports on this address.
	address string

	// local bind-probes the ports on the configured loopback address.
	local bool

	// cidr bind-probes the ports on every address of the block.
	cidr string

	// bind probes local ports by binding instead of querying the socket table.
	bind bool
}

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check <port> [end]",
		Short: "Report whether ports are available",
		Long: `Report whether each port in the inclusive range is available.

Without a target, ports on this host are checked against the socket table
(lsof). With --ip, --local or --cidr, each port is probed by binding a
listener on the target address.

Examples:
  portreclaim check 8080
  portreclaim check 3000 3010
  portreclaim check --local 8000 8100
  portreclaim check --cidr 10.0.0.0/30 80 81`,

		Args: cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			req, err := buildCheckRequest(flags, args, s.cfg.Loopback)
			if err != nil {
				return s.usage(err, cmd.UsageString())
			}
			return s.run(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVar(&flags.address, "ip", "", "Probe ports on this address")
	cmd.Flags().BoolVarP(&flags.local, "local", "l", false, "Probe ports on the loopback address")
	cmd.Flags().StringVar(&flags.cidr, "cidr", "", "Probe ports on every address of a network/prefix")
	cmd.Flags().BoolVar(&flags.bind, "bind", false, "Probe local ports by binding instead of querying lsof")

	return cmd
}

func buildCheckRequest(flags *checkFlags, args []string, loopback string) (*model.ScanRequest, error) {
	if len(args) > 2 {
		return nil, model.NewUsageError(msgInvalidRange)
	}
	if flags.local && flags.address != "" {
		return nil, model.NewUsageError("--ip and --local cannot be combined.")
	}

	portRange, err := parseRange(args)
	if err != nil {
		return nil, err
	}

	req := &model.ScanRequest{
		Mode:    model.ModeCheck,
		Address: flags.address,
		CIDR:    flags.cidr,
		Range:   portRange,
		Bind:    flags.bind,
	}
	if flags.local {
		req.Address = loopback
	}
	if req.Address != "" || req.CIDR != "" {
		req.Mode = model.ModeRemoteCheck
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
