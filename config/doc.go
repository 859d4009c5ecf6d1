// Package config loads YAML configuration and environment overrides into
// typed structs.
//
// Files are located by service name (cmd/<service>/config.yml, config/config.yml,
// ./config.yml) and a .env file, if present, is loaded into the process
// environment before overrides are applied. Environment variables carrying the
// loader prefix map onto nested keys:
//
//	RCHTTP_HTTP_BASE_URL=https://api.example.com  ->  http.base_url
//
// Usage:
//
//	var cfg struct {
//		HTTP httpclient.Config `mapstructure:"http"`
//	}
//	err := config.LoadConfig("my-service", &cfg)
package config
