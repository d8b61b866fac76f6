package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-redis-addr redis address in format host:port
//	-c/-config json file path with configs
//	-capability-secret capability signing secret
//	-capability-ttl capability token TTL (e.g., "168h")
//	-free-unlock-limit free unlock ceiling per reading
//	-identity-url identity service base URL
//	-identity-timeout identity service request timeout (e.g., "15s")
//	-offerings-url upsell redirect destination
//	-site-base-url public site base URL
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sweep-interval janitor sweep interval (e.g., "1m")
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var redisAddr string
	var jsonConfigPath string
	var capabilitySecret string
	var capabilityTTL time.Duration
	var freeUnlockLimit int
	var identityURL string
	var identityTimeout time.Duration
	var offeringsURL string
	var siteBaseURL string
	var requestTimeout time.Duration
	var sweepInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&redisAddr, "redis-addr", "", "Redis address host:port")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&capabilitySecret, "capability-secret", "", "Capability signing secret")
	flag.DurationVar(&capabilityTTL, "capability-ttl", 0, "Capability token TTL (e.g., 168h)")
	flag.IntVar(&freeUnlockLimit, "free-unlock-limit", 0, "Free unlock ceiling per reading")
	flag.StringVar(&identityURL, "identity-url", "", "Identity service base URL")
	flag.DurationVar(&identityTimeout, "identity-timeout", 0, "Identity service request timeout (e.g., 15s)")
	flag.StringVar(&offeringsURL, "offerings-url", "", "Offerings (upsell) redirect destination")
	flag.StringVar(&siteBaseURL, "site-base-url", "", "Public site base URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Janitor sweep interval (e.g., 1m)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			CapabilitySecret: capabilitySecret,
			CapabilityTTL:    capabilityTTL,
			FreeUnlockLimit:  freeUnlockLimit,
			OfferingsURL:     offeringsURL,
			SiteBaseURL:      siteBaseURL,
		},
		Identity: Identity{
			BaseURL:        identityURL,
			RequestTimeout: identityTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Redis: Redis{
				Addr: redisAddr,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			SweepInterval: sweepInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
