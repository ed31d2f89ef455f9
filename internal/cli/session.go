package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/portreclaim/internal/config"
	"github.com/shinji-kodama/portreclaim/internal/docker"
	"github.com/shinji-kodama/portreclaim/internal/logging"
	"github.com/shinji-kodama/portreclaim/internal/model"
	"github.com/shinji-kodama/portreclaim/internal/netrange"
	"github.com/shinji-kodama/portreclaim/internal/output"
	"github.com/shinji-kodama/portreclaim/internal/port"
)

// session holds the resolved configuration and output sinks for a single
// command invocation.
type session struct {
	cfg     config.Config
	log     *slog.Logger
	out     *output.Printer
	closers []func() error
}

// newSession loads the config file, applies the persistent flag
// overrides, and sets up logging and colour.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if strict {
		cfg.Strict = true
	}
	if colorMode != "" {
		cfg.Color = colorMode
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := logging.New(logging.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()})

	switch cfg.Color {
	case config.ColorAlways:
		output.SetColor(true)
	case config.ColorNever:
		output.SetColor(false)
	}

	log.Debug("configuration loaded",
		"path", config.Path(configPath),
		"lsof", cfg.LsofPath,
		"signal", cfg.Signal,
		"docker", cfg.Docker,
		"strict", cfg.Strict,
	)

	return &session{
		cfg: cfg,
		log: log,
		out: output.New(cmd.OutOrStdout()),
	}, nil
}

// driver wires the probers and the reclaimer for req.
func (s *session) driver(ctx context.Context, req *model.ScanRequest) (*Driver, error) {
	table := port.NewLsofTable(s.cfg.LsofPath, s.cfg.Signal)
	scanner := port.NewScanner()
	s.log.Debug("process table", "lsof", s.cfg.LsofPath, "signal", "SIG"+table.Signal())

	var local port.Prober = port.NewTableProber(table)
	if req.Bind {
		local = scanner
	}

	reclaimer := port.NewReclaimer(table, s.log)
	if req.Mode == model.ModeCheckAndFree && s.cfg.Docker {
		c, err := s.dockerContainers(ctx)
		switch {
		case err == nil:
			reclaimer = reclaimer.WithContainers(c)
		case s.cfg.Strict:
			return nil, err
		default:
			s.log.Warn("docker unavailable, using the process table only", "error", err)
		}
	}

	return &Driver{
		Local:     local,
		Bind:      scanner,
		Reclaimer: reclaimer,
		Out:       s.out,
		Log:       s.log,
	}, nil
}

// dockerContainers connects to the daemon. Errors carry
// model.ExitDockerNotRunning.
func (s *session) dockerContainers(ctx context.Context) (*docker.Containers, error) {
	c, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	s.closers = append(s.closers, c.Close)
	return docker.NewContainers(c), nil
}

// run executes req and maps the outcome to an exit status.
func (s *session) run(ctx context.Context, req *model.ScanRequest) error {
	defer s.close()

	d, err := s.driver(ctx, req)
	if err != nil {
		return err
	}

	sum, err := d.Run(ctx, req)
	if err != nil {
		var parseErr *netrange.ParseError
		if errors.As(err, &parseErr) {
			return model.NewCLIError(model.ExitInvalidCIDR, parseErr.Error())
		}
		return err
	}

	s.log.Debug("scan complete",
		"probed", sum.Probed,
		"free", sum.Free,
		"busy", sum.Busy,
		"freed", sum.Freed,
		"failed", sum.Failed,
	)

	if s.cfg.Strict && sum.Unresolved() > 0 {
		return model.NewCLIError(model.ExitPortsBusy,
			fmt.Sprintf("%d of %d ports left busy", sum.Unresolved(), sum.Probed))
	}
	return nil
}

// usage prints the usage error's message followed by the usage text. The
// exit status stays 0 unless strict mode is on.
func (s *session) usage(err error, usageText string) error {
	var usageErr *model.UsageError
	if !errors.As(err, &usageErr) {
		return err
	}

	if usageErr.Err != nil {
		s.log.Debug("usage error", "error", usageErr.Err)
	}
	if usageErr.Message != "" {
		s.out.Line(usageErr.Message)
	}
	s.out.Line(strings.TrimRight(usageText, "\n"))

	if s.cfg.Strict {
		return model.NewCLIError(model.ExitUsage, usageErr.Error())
	}
	return nil
}

func (s *session) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.log.Debug("close failed", "error", err)
		}
	}
	s.closers = nil
}

// runLegacy handles the root command's single-dash syntax. Cobra does not
// parse flags for the root command, so the persistent flags are split off
// here before the remaining tokens go to ParseArgs.
func runLegacy(cmd *cobra.Command, args []string) error {
	la := splitLegacyArgs(cmd.PersistentFlags(), args)
	switch {
	case la.help:
		return cmd.Help()
	case la.version:
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Root().Name(), cmd.Root().Version)
		return nil
	}
	if err := cmd.PersistentFlags().Parse(la.flags); err != nil {
		return model.WrapCLIError(model.ExitUsage, "invalid flag", err)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	req, err := ParseArgs(la.rest, s.cfg.Loopback)
	if err != nil {
		return s.usage(err, legacyUsage(cmd.Root().Name()))
	}
	return s.run(cmd.Context(), req)
}
