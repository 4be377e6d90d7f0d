package log

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/evalphobia/logrus_fluent"
	"github.com/sirupsen/logrus"

	"github.com/eosbp/bpclaim/common/errors"
)

const (
	HookVendorFluentd  = "fluentd"
	HookVendorLogstash = "logstash"
)

// ForwarderConfig ships log entries to a collector besides the console
// and the log file.
type ForwarderConfig struct {
	Vendor     string        `json:"vendor"`
	Address    string        `json:"address"`
	Level      string        `json:"level"`
	Name       string        `json:"name"`
	TimeFormat string        `json:"time_format,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
	MaxRetry   int           `json:"max_retry,omitempty"`
}

func (c *ForwarderConfig) NetworkAndHostPort(defaultNet string) (string, string, error) {
	addr := c.Address
	if !strings.Contains(addr, "://") {
		addr = defaultNet + "://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", "", errors.IllegalArgumentError.Wrapf(err, "InvalidAddress(address=%s)", c.Address)
	}
	if u.Host == "" {
		return "", "", errors.IllegalArgumentError.Errorf("NoHostPort(address=%s)", c.Address)
	}
	if u.Scheme == "unix" {
		return "", "", errors.IllegalArgumentError.Errorf("InvalidNetwork(address=%s)", c.Address)
	}
	return u.Scheme, u.Host, nil
}

func parseHostPort(hostPort string) (string, int) {
	idx := strings.LastIndex(hostPort, ":")
	if idx > 0 {
		port, _ := strconv.Atoi(hostPort[idx+1:])
		return hostPort[:idx], port
	}
	return hostPort, 0
}

// HookLevels returns the given level and every more severe one.
func (c *ForwarderConfig) HookLevels() ([]logrus.Level, error) {
	lv, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	lvs := make([]logrus.Level, 0, 7)
	for l := PanicLevel; l <= lv; l++ {
		lvs = append(lvs, logrus.Level(l))
	}
	return lvs, nil
}

type hookWrapper struct {
	h   logrus.Hook
	lvs []logrus.Level
}

func (h *hookWrapper) Levels() []logrus.Level {
	return h.lvs
}

func (h *hookWrapper) Fire(e *logrus.Entry) error {
	d := e.Data
	defer func() {
		e.Data = d
	}()
	e.Data = make(logrus.Fields, len(d)+2)
	for k, v := range d {
		e.Data[k] = v
	}

	e.Data["logtime"] = e.Time.UnixNano()
	if e.Caller != nil {
		if _, ok := e.Data[FieldKeyModule]; !ok {
			e.Data[FieldKeyModule] = getPackageName(e.Caller.Function)
		}
		e.Data["src"] = fmt.Sprintf("%s:%d", path.Base(e.Caller.File), e.Caller.Line)
	}
	return h.h.Fire(e)
}

type hookCreator func(c *ForwarderConfig, lvs []logrus.Level) (logrus.Hook, error)

// AddForwarder attaches a forwarding hook to the global logger.
func AddForwarder(c *ForwarderConfig) error {
	h, err := NewForwarderHook(c)
	if err != nil {
		return err
	}
	globalLogger.addHook(h)
	return nil
}

func NewForwarderHook(c *ForwarderConfig) (logrus.Hook, error) {
	if c == nil {
		return nil, errors.IllegalArgumentError.New("NilForwarderConfig")
	}
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Name == "" {
		c.Name = "bpclaim"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = time.RFC3339Nano
	}

	var create hookCreator
	switch c.Vendor {
	case HookVendorFluentd:
		create = fluentHookCreator
	case HookVendorLogstash:
		create = logstashHookCreator
	default:
		return nil, errors.UnsupportedError.Errorf("UnsupportedForwarder(vendor=%s)", c.Vendor)
	}
	lvs, err := c.HookLevels()
	if err != nil {
		return nil, err
	}
	h, err := create(c, lvs)
	if err != nil {
		return nil, err
	}
	return &hookWrapper{h: h, lvs: lvs}, nil
}

func fluentHookCreator(c *ForwarderConfig, lvs []logrus.Level) (logrus.Hook, error) {
	network, hostPort, err := c.NetworkAndHostPort("tcp")
	if err != nil {
		return nil, err
	}
	host, port := parseHostPort(hostPort)
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	maxRetry := c.MaxRetry
	if maxRetry == 0 {
		maxRetry = 1
	}
	return logrus_fluent.NewWithConfig(logrus_fluent.Config{
		DefaultTag:          c.Name,
		FluentNetwork:       network,
		Host:                host,
		Port:                port,
		LogLevels:           lvs,
		Timeout:             timeout,
		RetryWait:           500,
		MaxRetry:            maxRetry,
		DefaultMessageField: "message",
		SubSecondPrecision:  true,
	})
}

func logstashHookCreator(c *ForwarderConfig, _ []logrus.Level) (logrus.Hook, error) {
	network, hostPort, err := c.NetworkAndHostPort("tcp")
	if err != nil {
		return nil, err
	}
	h, err := logrustash.NewHook(network, hostPort, c.Name)
	if err != nil {
		return nil, err
	}
	h.TimeFormat = c.TimeFormat
	return h, nil
}
