package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/amirasaad/fxconv/infra/provider/exchangerateapi"
	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/pkg/converter"
	"github.com/amirasaad/fxconv/pkg/currency"
	"github.com/amirasaad/fxconv/pkg/money"
	"github.com/amirasaad/fxconv/pkg/provider"
	log "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const usage = `Usage:
  cli                               interactive converter
  cli convert <amount> <from> <to>  one-shot conversion`

const help = `Commands:
  amount <value>   set the amount
  from <code>      set the source currency (refetches rates)
  to <code>        set the target currency
  swap             swap source and target
  refresh          refetch rates
  show             print the current conversion
  currencies       list supported currencies
  quit             exit`

func main() {
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel}))
	fetcher := exchangerateapi.New(cfg.ExchangeRate, nil, logger)

	switch {
	case len(args) == 0:
		ctl := converter.New(fetcher,
			converter.WithLogger(logger),
			converter.WithInitial(cfg.Converter.DefaultAmount, cfg.Converter.DefaultSource, cfg.Converter.DefaultTarget),
		)
		return newShell(ctl, out).loop(ctx, in)
	case args[0] == "convert" && len(args) == 4:
		return convertOnce(ctx, fetcher, logger, args[1], args[2], args[3], out)
	default:
		fmt.Fprintln(out, usage)
		return nil
	}
}

// convertOnce validates its arguments strictly instead of falling back to defaults.
func convertOnce(ctx context.Context, fetcher provider.RateFetcher, logger *slog.Logger, amount, from, to string, out io.Writer) error {
	if _, err := money.ParseAmount(amount); err != nil {
		return err
	}
	registry := currency.NewRegistry()
	for _, code := range []string{from, to} {
		if _, err := registry.Validate(code); err != nil {
			return err
		}
	}
	ctl := converter.New(fetcher,
		converter.WithLogger(logger),
		converter.WithRegistry(registry),
		converter.WithInitial(amount, from, to),
	)
	_ = ctl.Mount(ctx)
	v := ctl.View()
	if v.Error != "" {
		return errors.New(v.Error)
	}
	if v.RateLine == "" {
		return fmt.Errorf("no rate available for %s to %s", v.Source, v.Target)
	}
	fmt.Fprintln(out, v.Summary())
	return nil
}

type shell struct {
	ctl    *converter.Controller
	out    io.Writer
	result func(format string, a ...any) string
	faint  func(format string, a ...any) string
	errorf func(format string, a ...any) string
	prompt func(format string, a ...any) string
}

func newShell(ctl *converter.Controller, out io.Writer) *shell {
	return &shell{
		ctl:    ctl,
		out:    out,
		result: color.New(color.FgGreen, color.Bold).SprintfFunc(),
		faint:  color.New(color.Faint).SprintfFunc(),
		errorf: color.New(color.FgRed).SprintfFunc(),
		prompt: color.New(color.FgCyan).SprintfFunc(),
	}
}

func (s *shell) loop(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, s.faint("Loading exchange rates..."))
	_ = s.ctl.Mount(ctx)
	s.render(s.ctl.View())
	fmt.Fprintln(s.out, s.faint("Type 'help' for commands."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt("fx> "))
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		quit, err := s.exec(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintln(s.out, s.errorf("%v", err))
		}
		if quit {
			return nil
		}
	}
}

// exec runs one command line. It reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var (
		v   converter.View
		err error
	)
	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, help)
		return false, nil
	case "currencies":
		for _, c := range currency.NewRegistry().List() {
			fmt.Fprintf(s.out, "  %s  %-4s %s\n", c.Code, c.Symbol, c.Name)
		}
		return false, nil
	case "show":
		v = s.ctl.View()
	case "amount":
		if len(args) > 1 {
			return false, fmt.Errorf("usage: amount <value>")
		}
		v, err = s.ctl.SetAmount(ctx, strings.Join(args, ""))
	case "from", "to":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <code>", cmd)
		}
		if cmd == "from" {
			v, err = s.ctl.SetSourceCurrency(ctx, args[0])
		} else {
			v, err = s.ctl.SetTargetCurrency(ctx, args[0])
		}
	case "swap":
		v, err = s.ctl.Swap(ctx)
	case "refresh":
		if rerr := s.ctl.RefreshRates(ctx); rerr != nil && errors.Is(rerr, converter.ErrSuperseded) {
			return false, nil
		}
		v = s.ctl.View()
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
	if err != nil {
		return false, err
	}
	s.render(v)
	return false, nil
}

func (s *shell) render(v converter.View) {
	fmt.Fprintln(s.out, s.result("%s", v.Summary()))
	if v.RateLine != "" {
		fmt.Fprintln(s.out, s.faint("%s", v.RateLine))
	}
	if v.LastUpdated != "" {
		fmt.Fprintln(s.out, s.faint("Last updated: %s", v.LastUpdated))
	}
	if v.Error != "" {
		fmt.Fprintln(s.out, s.errorf("%s", v.Error))
	}
}
