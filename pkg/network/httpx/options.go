package httpx

import (
	"time"

	"github.com/framecast/player/pkg/logger"
)

type (
	Options struct {
		Https        bool
		HttpsCert    string
		HttpsKey     string
		HttpsDomain  string
		CertCache    string
		PortRoll     bool
		Prefix       string
		IdleTimeout  time.Duration
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		Logger       *logger.Logger
	}
	Option func(*Options)
)

func (o *Options) override(options ...Option) {
	for _, opt := range options {
		opt(o)
	}
}

func (o *Options) IsAutoHttpsCert() bool { return !(o.HttpsCert != "" && o.HttpsKey != "") }

func WithPortRoll(roll bool) Option        { return func(opts *Options) { opts.PortRoll = roll } }
func WithPrefix(prefix string) Option      { return func(opts *Options) { opts.Prefix = prefix } }
func WithLogger(log *logger.Logger) Option { return func(opts *Options) { opts.Logger = log } }

// WithTLS turns on HTTPS. Without cert and key files the certificates
// are requested from Let's Encrypt for the domain.
func WithTLS(cert, key, domain, cache string) Option {
	return func(opts *Options) {
		opts.Https = true
		opts.HttpsCert = cert
		opts.HttpsKey = key
		opts.HttpsDomain = domain
		opts.CertCache = cache
	}
}

func WithTimeouts(idle, read, write time.Duration) Option {
	return func(opts *Options) {
		opts.IdleTimeout = idle
		opts.ReadTimeout = read
		opts.WriteTimeout = write
	}
}
