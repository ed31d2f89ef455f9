package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// freeFlags holds the flag values for the free command.
type freeFlags struct {
	// docker kills containers publishing the port before falling back
	// to the process table.
	docker bool

	// signal overrides the configured termination signal (KILL or TERM).
	signal string
}

// NewFreeCommand creates the "free" cobra command.
func NewFreeCommand() *cobra.Command {
	flags := &freeFlags{}

	cmd := &cobra.Command{
		Use:   "free <port> [end]",
		Short: "Check local ports and kill whatever holds the busy ones",
		Long: `Check each local port in the inclusive range and, when it is busy,
terminate every process listening on it.

The processes are killed without confirmation. With --docker, running
containers that publish the port are killed through the Docker daemon
first; if the daemon is unreachable the process table is used instead.

Examples:
  portreclaim free 8080
  portreclaim free 3000 3005
  portreclaim free --docker 5432
  portreclaim free --signal TERM 8080`,

		Args: cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("docker") {
				s.cfg.Docker = flags.docker
			}
			if flags.signal != "" {
				s.cfg.Signal = flags.signal
				if err := s.cfg.Validate(); err != nil {
					return err
				}
			}

			req, err := buildFreeRequest(args)
			if err != nil {
				return s.usage(err, cmd.UsageString())
			}
			return s.run(cmd.Context(), req)
		},
	}

	cmd.Flags().BoolVar(&flags.docker, "docker", false, "Kill containers publishing the port first")
	cmd.Flags().StringVar(&flags.signal, "signal", "", "Termination signal: KILL or TERM")

	return cmd
}

func buildFreeRequest(args []string) (*model.ScanRequest, error) {
	if len(args) > 2 {
		return nil, model.NewUsageError(msgInvalidRange)
	}

	portRange, err := parseRange(args)
	if err != nil {
		return nil, err
	}

	req := &model.ScanRequest{Mode: model.ModeCheckAndFree, Range: portRange}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
