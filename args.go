package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	auction "auction-site/internal/auctionService"
	"auction-site/internal/identity"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN renders the connection string understood by the postgres driver
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type Args struct {
	ServerURL string
	LogLevel  string
	Store     string
	DB        DBConfig
	Identity  identity.Config
	Auction   auction.Config
}

// ParseArgs reads flags and AUCTION_* environment variables. A flag given on the
// command line wins over the environment, which wins over the flag default.
func ParseArgs(arguments []string) (Args, error) {
	flags := pflag.NewFlagSet("auction-site", pflag.ContinueOnError)

	// server config
	flags.String("server-url", "0.0.0.0:8080", "")
	flags.String("log-level", "info", "")

	// store config
	flags.String("store", StoreMemory, "memory or postgres")
	flags.String("db-host", "localhost", "")
	flags.Int("db-port", 5432, "")
	flags.String("db-user", "", "")
	flags.String("db-password", "", "")
	flags.String("db-database", "auction", "")
	flags.String("db-sslmode", "disable", "")

	// identity config
	flags.String("jwt-secret", "", "")
	flags.Duration("jwt-ttl", 24*time.Hour, "")

	// bidding config
	flags.Int("bid-max-retries", auction.DefaultMaxRetries, "")
	flags.Duration("bid-retry-interval", auction.DefaultRetryInterval, "")
	defaults := auction.DefaultPolicy()
	flags.Bool("policy-author-only-close", defaults.AuthorOnlyClose, "")
	flags.Bool("policy-allow-self-bid", defaults.AllowSelfBid, "")
	flags.Bool("policy-allow-reclose", defaults.AllowReclose, "")

	if err := flags.Parse(arguments); err != nil {
		return Args{}, err
	}

	// bind pflag to viper
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return Args{}, err
	}
	v.AutomaticEnv()
	v.SetEnvPrefix("AUCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return Args{
		ServerURL: v.GetString("server-url"),
		LogLevel:  v.GetString("log-level"),
		Store:     v.GetString("store"),
		DB: DBConfig{
			Host:     v.GetString("db-host"),
			Port:     v.GetInt("db-port"),
			User:     v.GetString("db-user"),
			Password: v.GetString("db-password"),
			Database: v.GetString("db-database"),
			SSLMode:  v.GetString("db-sslmode"),
		},
		Identity: identity.Config{
			Secret:   v.GetString("jwt-secret"),
			TokenTTL: v.GetDuration("jwt-ttl"),
		},
		Auction: auction.Config{
			MaxRetries:    v.GetInt("bid-max-retries"),
			RetryInterval: v.GetDuration("bid-retry-interval"),
			Policy: auction.Policy{
				AuthorOnlyClose: v.GetBool("policy-author-only-close"),
				AllowSelfBid:    v.GetBool("policy-allow-self-bid"),
				AllowReclose:    v.GetBool("policy-allow-reclose"),
			},
		},
	}, nil
}

func (args Args) Validate() error {
	var errs []error
	if args.ServerURL == "" {
		errs = append(errs, errors.New("server-url is required"))
	}
	if args.Identity.Secret == "" {
		errs = append(errs, errors.New("jwt-secret is required"))
	}
	switch args.Store {
	case StoreMemory:
	case StorePostgres:
		if args.DB.Host == "" || args.DB.User == "" || args.DB.Database == "" {
			errs = append(errs, errors.New("postgres store needs db-host, db-user and db-database"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", args.Store))
	}
	if args.Auction.MaxRetries < 0 {
		errs = append(errs, errors.New("bid-max-retries must not be negative"))
	}
	return errors.Join(errs...)
}
