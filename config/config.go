package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel int    `toml:"log_level"`

	Database   DatabaseConfigs   `toml:"database"`
	Settlement SettlementConfigs `toml:"settlement"`
	Nadeo      NadeoConfigs      `toml:"nadeo"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type SettlementConfigs struct {
	// Interval between two scans for expired predictions.
	Interval time.Duration `toml:"interval"`

	// MaxConcurrent bounds how many predictions of one scan are settled in
	// parallel.
	MaxConcurrent int `toml:"max_concurrent"`
}

type NadeoConfigs struct {
	CoreURL   string `toml:"core_url"`
	AuthURL   string `toml:"auth_url"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	UserAgent string `toml:"user_agent"`

	// MinRequestInterval is the global spacing between two outbound calls.
	MinRequestInterval time.Duration `toml:"min_request_interval"`
	RequestTimeout     time.Duration `toml:"request_timeout"`

	// TokenExpirationMargin refreshes a credential this long before its
	// claimed expiry.
	TokenExpirationMargin time.Duration `toml:"token_expiration_margin"`
}
