package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for JSON file parsing.
// Durations are declared through the [Duration] wrapper so values like
// "30s" and "168h" can be written directly in the file.
type StructuredJSONConfig struct {
	App struct {
		CapabilitySecret string   `json:"capability_secret"`
		CapabilityKeyID  string   `json:"capability_key_id"`
		CapabilityTTL    Duration `json:"capability_ttl"`
		FreeUnlockLimit  int      `json:"free_unlock_limit"`
		SiteBaseURL      string   `json:"site_base_url"`
		OfferingsURL     string   `json:"offerings_url"`
		Version          string   `json:"version"`
	} `json:"app,omitempty"`

	Identity struct {
		Disabled       bool     `json:"disabled"`
		BaseURL        string   `json:"base_url"`
		LoginURL       string   `json:"login_url"`
		LandingPath    string   `json:"landing_path"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"identity,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Redis struct {
			Addr     string `json:"addr"`
			Password string `json:"password"`
			Database int    `json:"database"`
		} `json:"redis,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	RateLimit struct {
		ResendLimit  int      `json:"resend_limit"`
		ResendWindow Duration `json:"resend_window"`
	} `json:"rate_limit,omitempty"`

	Workers struct {
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			CapabilitySecret: jsonCfg.App.CapabilitySecret,
			CapabilityKeyID:  jsonCfg.App.CapabilityKeyID,
			CapabilityTTL:    time.Duration(jsonCfg.App.CapabilityTTL),
			FreeUnlockLimit:  jsonCfg.App.FreeUnlockLimit,
			SiteBaseURL:      jsonCfg.App.SiteBaseURL,
			OfferingsURL:     jsonCfg.App.OfferingsURL,
			Version:          jsonCfg.App.Version,
		},
		Identity: Identity{
			Disabled:       jsonCfg.Identity.Disabled,
			BaseURL:        jsonCfg.Identity.BaseURL,
			LoginURL:       jsonCfg.Identity.LoginURL,
			LandingPath:    jsonCfg.Identity.LandingPath,
			RequestTimeout: time.Duration(jsonCfg.Identity.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Redis: Redis{
				Addr:     jsonCfg.Storage.Redis.Addr,
				Password: jsonCfg.Storage.Redis.Password,
				Database: jsonCfg.Storage.Redis.Database,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		RateLimit: RateLimit{
			ResendLimit:  jsonCfg.RateLimit.ResendLimit,
			ResendWindow: time.Duration(jsonCfg.RateLimit.ResendWindow),
		},
		Workers: Workers{
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
