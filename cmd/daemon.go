package mcwatchcmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/cloudflare/tableflip"
	"github.com/realDragonium/mcwatch/api"
	"github.com/realDragonium/mcwatch/config"
	"github.com/realDragonium/mcwatch/logging"
	"github.com/realDragonium/mcwatch/monitor"
	"github.com/realDragonium/mcwatch/notify"
	"github.com/realDragonium/mcwatch/ping"
	"github.com/realDragonium/mcwatch/quote"
	"github.com/realDragonium/mcwatch/source"
	"golang.org/x/sync/errgroup"
)

func monitorConfig(mcfg config.MonitorConfig) monitor.Config {
	return monitor.Config{
		ServerName:    mcfg.ServerName,
		Interval:      mcfg.Interval,
		PollTimeout:   mcfg.PollTimeout,
		ErrorBackoff:  mcfg.ErrorBackoff,
		QueryCooldown: mcfg.QueryCooldown,
	}
}

func buildSource(cfg config.Config, mcfg config.MonitorConfig) source.Source {
	if cfg.Source == config.HTTPSource {
		return source.NewHTTPSource(cfg.StatusAPI, mcfg.Host, mcfg.Port, mcfg.PollTimeout)
	}
	client := ping.NewClient(mcfg.ConnectTimeout, mcfg.ReadTimeout, cfg.SendProxyProtocol)
	return source.NewPingSource(client, mcfg.Host, mcfg.Port)
}

func buildQuotes(cfg config.Config, mcfg config.MonitorConfig) monitor.QuoteFetcher {
	if !cfg.Quote.Enabled {
		return nil
	}
	return quote.NewClient(cfg.Quote.URL, mcfg.QuoteTimeout)
}

// buildNotifier assembles every configured sink. The returned func releases
// what they hold.
func buildNotifier(ctx context.Context, cfg config.Config, hub *notify.Hub) (notify.Notifier, func(), error) {
	var (
		sinks   notify.Multi
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Notify.Log {
		sinks = append(sinks, notify.Log{})
	}
	if onebot := cfg.Notify.OneBot; onebot.URL != "" {
		groupID, err := strconv.ParseInt(onebot.GroupID, 10, 64)
		if err != nil {
			return nil, closeAll, fmt.Errorf("onebot group id: %w", err)
		}
		sinks = append(sinks, notify.NewOneBot(onebot.URL, groupID, onebot.AccessToken))
	}
	if cfg.Notify.Webhook.URL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.Notify.Webhook.URL))
	}
	if mq := cfg.Notify.MQTT; mq.Broker != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := notify.DialMQTT(dialCtx, notify.MQTTConfig{
			Broker:   mq.Broker,
			ClientID: mq.ClientID,
			Username: mq.Username,
			Password: mq.Password,
			Topic:    mq.Topic,
		})
		cancel()
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, client)
		closers = append(closers, client.Close)
	}
	if hub != nil {
		sinks = append(sinks, hub)
		closers = append(closers, hub.Close)
	}
	return sinks, closeAll, nil
}

func runDaemon(cfg config.Config) error {
	logger := logging.Component("daemon")
	mcfg, err := cfg.Monitor()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var hub *notify.Hub
	if cfg.Notify.WebSocket {
		hub = notify.NewHub()
	}
	notifier, closeSinks, err := buildNotifier(ctx, cfg, hub)
	defer closeSinks()
	if err != nil {
		return err
	}

	m := monitor.New(monitorConfig(mcfg), buildSource(cfg, mcfg), notifier)
	m.Quotes = buildQuotes(cfg, mcfg)

	var ws http.Handler
	if hub != nil {
		ws = hub
	}
	handler := api.New(ctx, m, ws, cfg.API.AllowedOrigins)
	handler.Limiter = api.NewRateLimiter(cfg.API.RateLimit, mcfg.RateCooldown)
	srv := &http.Server{
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, upg, err := listen(cfg.API)
	if err != nil {
		return fmt.Errorf("can't listen on %s: %w", cfg.API.ListenTo, err)
	}
	if upg != nil {
		defer upg.Stop()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return api.Serve(groupCtx, srv, ln)
	})
	if upg != nil {
		group.Go(func() error {
			return waitForUpgrade(groupCtx, upg, cancel)
		})
	}

	if cfg.AutoStart {
		m.AutoStart(groupCtx, mcfg.StartDelay)
	}
	logger.Info().
		Str("api", ln.Addr().String()).
		Str("server", net.JoinHostPort(mcfg.Host, strconv.Itoa(mcfg.Port))).
		Bool("autoStart", cfg.AutoStart).
		Msg("ready")

	err = group.Wait()
	if stopErr := m.Stop(); stopErr == nil {
		logger.Info().Msg("monitor loop ended")
	}
	logger.Info().Msg("shutting down")
	return err
}

// listen hands out the API listener. With hot swap enabled it comes from
// tableflip, so a SIGHUP starts a new process that takes over the socket.
func listen(cfg config.APIConfig) (net.Listener, *tableflip.Upgrader, error) {
	if !cfg.EnableHotSwap || runtime.GOOS == "windows" {
		ln, err := net.Listen("tcp", cfg.ListenTo)
		return ln, nil, err
	}

	upg, err := tableflip.New(tableflip.Options{
		PIDFile: cfg.PidFile,
	})
	if err != nil {
		return nil, nil, err
	}
	ln, err := upg.Listen("tcp", cfg.ListenTo)
	if err != nil {
		upg.Stop()
		return nil, nil, err
	}
	return ln, upg, nil
}

func waitForUpgrade(ctx context.Context, upg *tableflip.Upgrader, shutdown context.CancelFunc) error {
	logger := logging.Component("daemon")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	defer signal.Stop(sig)

	if err := upg.Ready(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sig:
			if err := upg.Upgrade(); err != nil {
				logger.Error().Err(err).Msg("upgrade failed")
				continue
			}
		case <-upg.Exit():
			logger.Info().Msg("upgrade in process, handing over")
			shutdown()
			return nil
		}
	}
}
