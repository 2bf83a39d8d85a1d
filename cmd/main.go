package mcwatchcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/realDragonium/mcwatch/config"
	"github.com/realDragonium/mcwatch/format"
	"github.com/realDragonium/mcwatch/logging"
	"github.com/realDragonium/mcwatch/monitor"
	"github.com/realDragonium/mcwatch/snapshot"
	"github.com/rs/zerolog/log"
)

const version = "v0.3.0"

var defaultCfgPath = "/etc/mcwatch/mcwatch.json"

const usage = `usage: mcwatch <command> [-config path]

commands:
  run     start the monitor and its HTTP API
  query   print the current server status once (-table for a table)
  reset   forget the remembered players of a running monitor
  start   start polling in a running monitor
  stop    stop polling in a running monitor
`

func Main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("mcwatch failed")
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(out, usage)
		return errors.New("didnt receive a command")
	}

	switch args[0] {
	case "run", "query", "reset", "start", "stop":
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(out)
	cfgPath := flags.String("config", defaultCfgPath, "`Path` to the config file (.json or .yaml)")
	table := flags.Bool("table", false, "print query output as a table")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging, os.Stderr)

	switch args[0] {
	case "run":
		log.Info().Str("version", version).Str("config", cfg.FilePath).Msg("starting up")
		return runDaemon(cfg)
	case "query":
		return query(cfg, out, *table)
	default:
		return callAPI(cfg, args[0], out)
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if errs := config.Verify(cfg); len(errs) > 0 {
		for _, err := range errs {
			log.Error().Err(err).Msg("invalid config")
		}
		return cfg, fmt.Errorf("%s has %d config error(s): %w", path, len(errs), errors.Join(errs...))
	}
	return cfg, nil
}

func query(cfg config.Config, out io.Writer, table bool) error {
	mcfg, err := cfg.Monitor()
	if err != nil {
		return err
	}
	src := buildSource(cfg, mcfg)
	ctx, cancel := context.WithTimeout(context.Background(), mcfg.PollTimeout)
	defer cancel()

	if !table {
		m := monitor.New(monitorConfig(mcfg), src, nil)
		m.Quotes = buildQuotes(cfg, mcfg)
		fmt.Fprintln(out, m.QueryNow(ctx))
		return nil
	}

	raw, err := src.Fetch(ctx)
	if err != nil {
		fmt.Fprintln(out, format.Unreachable)
		return err
	}
	format.Table(out, snapshot.Normalize(raw, mcfg.ServerName))
	return nil
}

var apiPaths = map[string]string{
	"reset": "/reset",
	"start": "/monitor/start",
	"stop":  "/monitor/stop",
}

// callAPI asks the daemon described by cfg to act.
func callAPI(cfg config.Config, command string, out io.Writer) error {
	url := fmt.Sprintf("http://%s%s", cfg.API.ListenTo, apiPaths[command])
	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, body)
	}
	fmt.Fprintf(out, "%s", body)
	return nil
}
