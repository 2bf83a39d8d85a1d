package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

type VerifyError struct {
	Field   string
	Message string
}

func (err *VerifyError) Error() string {
	return fmt.Sprintf("'%s': %s", err.Field, err.Message)
}

// Verify returns every problem with cfg instead of stopping at the first.
func Verify(cfg Config) []error {
	errors := []error{}
	fail := func(field, format string, args ...interface{}) {
		errors = append(errors, &VerifyError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Host == "" {
		fail("host", "is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		fail("port", "%d is not between 1 and 65535", cfg.Port)
	}

	switch cfg.Source {
	case PingSource:
	case HTTPSource:
		if !validURL(cfg.StatusAPI) {
			fail("statusAPI", "%q is not an http(s) url", cfg.StatusAPI)
		}
	default:
		fail("source", "must be %q or %q, got %q", PingSource, HTTPSource, cfg.Source)
	}

	if mcfg, err := cfg.Monitor(); err != nil {
		errors = append(errors, err)
	} else {
		positive := []struct {
			field string
			value int64
		}{
			{"connectTimeout", int64(mcfg.ConnectTimeout)},
			{"readTimeout", int64(mcfg.ReadTimeout)},
			{"checkInterval", int64(mcfg.Interval)},
		}
		for _, p := range positive {
			if p.value <= 0 {
				fail(p.field, "must be greater than zero")
			}
		}
	}

	if cfg.Quote.Enabled && !validURL(cfg.Quote.URL) {
		fail("quote.url", "%q is not an http(s) url", cfg.Quote.URL)
	}

	onebot := cfg.Notify.OneBot
	if onebot.URL != "" || onebot.GroupID != "" {
		if !validURL(onebot.URL) {
			fail("notify.onebot.url", "%q is not an http(s) url", onebot.URL)
		}
		if id, err := strconv.ParseInt(onebot.GroupID, 10, 64); err != nil || id <= 0 {
			fail("notify.onebot.groupID", "%q is not a valid group number", onebot.GroupID)
		}
	}
	if cfg.Notify.Webhook.URL != "" && !validURL(cfg.Notify.Webhook.URL) {
		fail("notify.webhook.url", "%q is not an http(s) url", cfg.Notify.Webhook.URL)
	}
	if mqtt := cfg.Notify.MQTT; mqtt.Broker != "" {
		if u, err := url.Parse(mqtt.Broker); err != nil || u.Scheme == "" || u.Host == "" {
			fail("notify.mqtt.broker", "%q is not a broker url like tcp://host:1883", mqtt.Broker)
		}
	}

	if _, _, err := net.SplitHostPort(cfg.API.ListenTo); cfg.API.ListenTo != "" && err != nil {
		fail("api.listenTo", "%v", err)
	}
	if cfg.API.RateLimit < 0 {
		fail("api.rateLimit", "can't be negative, use 0 to disable it")
	}
	return errors
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
