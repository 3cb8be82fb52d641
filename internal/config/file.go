package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// fileConfig mirrors Config for TOML decoding. Unset keys keep their defaults.
type fileConfig struct {
	Server struct {
		Addr *string `toml:"addr"`
	} `toml:"server"`
	AI struct {
		Provider    *string  `toml:"provider"`
		Model       *string  `toml:"model"`
		MaxTokens   *int     `toml:"max_tokens"`
		Temperature *float64 `toml:"temperature"`
		Timeout     *string  `toml:"timeout"`
		Stream      *bool    `toml:"stream"`
		OpenAI      struct {
			APIKey  *string `toml:"api_key"`
			BaseURL *string `toml:"base_url"`
			OrgID   *string `toml:"org_id"`
		} `toml:"openai"`
		Ark struct {
			APIKey    *string `toml:"api_key"`
			AccessKey *string `toml:"access_key"`
			SecretKey *string `toml:"secret_key"`
			BaseURL   *string `toml:"base_url"`
			Region    *string `toml:"region"`
			Model     *string `toml:"model"`
		} `toml:"ark"`
	} `toml:"ai"`
	Session struct {
		IdleTTL      *string `toml:"idle_ttl"`
		CookieName   *string `toml:"cookie_name"`
		CookieSecure *bool   `toml:"cookie_secure"`
	} `toml:"session"`
	Log struct {
		Level  *string `toml:"level"`
		Format *string `toml:"format"`
	} `toml:"log"`
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return errors.Wrapf(err, "decode config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("unknown keys in %s: %v", path, undecoded)
	}

	setString(&cfg.Server.Addr, fc.Server.Addr)

	setString(&cfg.AI.Provider, fc.AI.Provider)
	setString(&cfg.AI.Model, fc.AI.Model)
	if fc.AI.MaxTokens != nil {
		cfg.AI.MaxTokens = *fc.AI.MaxTokens
	}
	if fc.AI.Temperature != nil {
		cfg.AI.Temperature = float32(*fc.AI.Temperature)
	}
	if fc.AI.Timeout != nil {
		d, err := parseDuration(*fc.AI.Timeout)
		if err != nil {
			return errors.Wrapf(err, "invalid ai.timeout %q", *fc.AI.Timeout)
		}
		cfg.AI.Timeout = d
	}
	if fc.AI.Stream != nil {
		cfg.AI.Stream = *fc.AI.Stream
	}

	setString(&cfg.AI.OpenAI.APIKey, fc.AI.OpenAI.APIKey)
	setString(&cfg.AI.OpenAI.BaseURL, fc.AI.OpenAI.BaseURL)
	setString(&cfg.AI.OpenAI.OrgID, fc.AI.OpenAI.OrgID)

	setString(&cfg.AI.Ark.APIKey, fc.AI.Ark.APIKey)
	setString(&cfg.AI.Ark.AccessKey, fc.AI.Ark.AccessKey)
	setString(&cfg.AI.Ark.SecretKey, fc.AI.Ark.SecretKey)
	setString(&cfg.AI.Ark.BaseURL, fc.AI.Ark.BaseURL)
	setString(&cfg.AI.Ark.Region, fc.AI.Ark.Region)
	setString(&cfg.AI.Ark.Model, fc.AI.Ark.Model)

	if fc.Session.IdleTTL != nil {
		d, err := parseDuration(*fc.Session.IdleTTL)
		if err != nil {
			return errors.Wrapf(err, "invalid session.idle_ttl %q", *fc.Session.IdleTTL)
		}
		cfg.Session.IdleTTL = d
	}
	setString(&cfg.Session.CookieName, fc.Session.CookieName)
	if fc.Session.CookieSecure != nil {
		cfg.Session.CookieSecure = *fc.Session.CookieSecure
	}

	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.Format, fc.Log.Format)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
