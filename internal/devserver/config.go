package devserver

import (
	"flag"
	"os"
	"time"

	"github.com/adminkit/adminctl/internal/flagx"
)

// Config holds runtime settings for the development backend.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Development only.
//   - TokenValidityDuration: access token lifetime.
type Config struct {
	Addr                  string
	SecretKey             string
	TokenValidityDuration time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 8 * time.Hour
}

// LoadConfig builds a Config from defaults overlaid with command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)
	return cfg
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address
//	-k string   JWT signing secret
//	-t int      token lifetime in minutes
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-t"})

	fs := flag.NewFlagSet("adminapi", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "bind address")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "JWT signing secret")
	tokenTTL := fs.Int("t", int(cfg.TokenValidityDuration.Minutes()), "token lifetime (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.TokenValidityDuration = time.Duration(*tokenTTL) * time.Minute
}
