package config

import (
	"fmt"
	"time"

	"github.com/realDragonium/mcwatch/logging"
)

const (
	PingSource = "ping"
	HTTPSource = "http"
)

// Config is the file format. Durations are strings like "10s"; Monitor
// turns them into a MonitorConfig.
type Config struct {
	FilePath string `json:"-" yaml:"-"`

	ServerName        string `json:"serverName" yaml:"serverName"`
	Host              string `json:"host" yaml:"host"`
	Port              int    `json:"port" yaml:"port"`
	Source            string `json:"source" yaml:"source"`
	StatusAPI         string `json:"statusAPI" yaml:"statusAPI"`
	SendProxyProtocol bool   `json:"sendProxyProtocol" yaml:"sendProxyProtocol"`

	ConnectTimeout string `json:"connectTimeout" yaml:"connectTimeout"`
	ReadTimeout    string `json:"readTimeout" yaml:"readTimeout"`
	CheckInterval  string `json:"checkInterval" yaml:"checkInterval"`
	PollTimeout    string `json:"pollTimeout" yaml:"pollTimeout"`
	ErrorBackoff   string `json:"errorBackoff" yaml:"errorBackoff"`
	QueryCooldown  string `json:"queryCooldown" yaml:"queryCooldown"`
	AutoStart      bool   `json:"autoStart" yaml:"autoStart"`
	StartDelay     string `json:"startDelay" yaml:"startDelay"`

	Quote   QuoteConfig    `json:"quote" yaml:"quote"`
	Notify  NotifyConfig   `json:"notify" yaml:"notify"`
	API     APIConfig      `json:"api" yaml:"api"`
	Logging logging.Config `json:"logging" yaml:"logging"`
}

type QuoteConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	URL     string `json:"url" yaml:"url"`
	Timeout string `json:"timeout" yaml:"timeout"`
}

type NotifyConfig struct {
	Log       bool          `json:"log" yaml:"log"`
	WebSocket bool          `json:"websocket" yaml:"websocket"`
	OneBot    OneBotConfig  `json:"onebot" yaml:"onebot"`
	Webhook   WebhookConfig `json:"webhook" yaml:"webhook"`
	MQTT      MQTTConfig    `json:"mqtt" yaml:"mqtt"`
}

type OneBotConfig struct {
	URL         string `json:"url" yaml:"url"`
	GroupID     string `json:"groupID" yaml:"groupID"`
	AccessToken string `json:"accessToken" yaml:"accessToken"`
}

type WebhookConfig struct {
	URL string `json:"url" yaml:"url"`
}

type MQTTConfig struct {
	Broker   string `json:"broker" yaml:"broker"`
	ClientID string `json:"clientID" yaml:"clientID"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Topic    string `json:"topic" yaml:"topic"`
}

type APIConfig struct {
	ListenTo       string   `json:"listenTo" yaml:"listenTo"`
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`
	EnableHotSwap  bool     `json:"enableHotSwap" yaml:"enableHotSwap"`
	PidFile        string   `json:"pidFile" yaml:"pidFile"`
	RateLimit      int      `json:"rateLimit" yaml:"rateLimit"`
	RateCooldown   string   `json:"rateCooldown" yaml:"rateCooldown"`
}

func DefaultConfig() Config {
	return Config{
		ServerName:     "Minecraft server",
		Port:           25565,
		Source:         PingSource,
		StatusAPI:      "https://api.mcsrvstat.us/3",
		ConnectTimeout: "5s",
		ReadTimeout:    "5s",
		CheckInterval:  "10s",
		PollTimeout:    "15s",
		ErrorBackoff:   "5s",
		QueryCooldown:  "0s",
		AutoStart:      false,
		StartDelay:     "5s",
		Quote: QuoteConfig{
			Enabled: false,
			URL:     "https://v1.hitokoto.cn/?encode=text",
			Timeout: "2s",
		},
		Notify: NotifyConfig{
			Log: true,
		},
		API: APIConfig{
			ListenTo:       "127.0.0.1:8765",
			AllowedOrigins: []string{"*"},
			EnableHotSwap:  true,
			PidFile:        "/var/run/mcwatch.pid",
			RateLimit:      5,
			RateCooldown:   "1s",
		},
		Logging: logging.DefaultConfig(),
	}
}

// MonitorConfig is the parsed, typed form of the timing fields.
type MonitorConfig struct {
	ServerName     string
	Host           string
	Port           int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Interval       time.Duration
	PollTimeout    time.Duration
	ErrorBackoff   time.Duration
	QueryCooldown  time.Duration
	StartDelay     time.Duration
	QuoteTimeout   time.Duration
	RateCooldown   time.Duration
}

func (cfg Config) Monitor() (MonitorConfig, error) {
	mcfg := MonitorConfig{
		ServerName: cfg.ServerName,
		Host:       cfg.Host,
		Port:       cfg.Port,
	}
	durations := []struct {
		field string
		value string
		dst   *time.Duration
	}{
		{"connectTimeout", cfg.ConnectTimeout, &mcfg.ConnectTimeout},
		{"readTimeout", cfg.ReadTimeout, &mcfg.ReadTimeout},
		{"checkInterval", cfg.CheckInterval, &mcfg.Interval},
		{"pollTimeout", cfg.PollTimeout, &mcfg.PollTimeout},
		{"errorBackoff", cfg.ErrorBackoff, &mcfg.ErrorBackoff},
		{"queryCooldown", cfg.QueryCooldown, &mcfg.QueryCooldown},
		{"startDelay", cfg.StartDelay, &mcfg.StartDelay},
		{"quote.timeout", cfg.Quote.Timeout, &mcfg.QuoteTimeout},
		{"api.rateCooldown", cfg.API.RateCooldown, &mcfg.RateCooldown},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return mcfg, &VerifyError{Field: d.field, Message: fmt.Sprintf("invalid duration %q", d.value)}
		}
		*d.dst = parsed
	}
	return mcfg, nil
}
