package config

// Config contains all configuration grouped by domain
type Config struct {
	Server  ServerConfig
	JWT     JWTConfig
	Catalog CatalogConfig
	Refresh RefreshConfig
	Logging LoggingConfig
}

// All config structs use string fields only - packages handle conversion during initialization
type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  string
	WriteTimeout string
}

type JWTConfig struct {
	Secret     string
	Expiration string
}

type CatalogConfig struct {
	BaseURL     string
	PageSize    string
	MaxPages    string
	HTTPTimeout string
}

type RefreshConfig struct {
	Schedule string
}

type LoggingConfig struct {
	Level       string
	Format      string
	ServiceName string
}
