package config

import "os"

// Load reads configuration from environment variables as raw strings
// Components handle validation and defaults during initialization
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         os.Getenv("SERVER_PORT"),
			Environment:  os.Getenv("SERVER_ENV"),
			ReadTimeout:  os.Getenv("SERVER_READ_TIMEOUT"),
			WriteTimeout: os.Getenv("SERVER_WRITE_TIMEOUT"),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Expiration: os.Getenv("JWT_EXPIRATION"),
		},
		Catalog: CatalogConfig{
			BaseURL:     os.Getenv("CATALOG_SERVICE_URL"),
			PageSize:    os.Getenv("CATALOG_PAGE_SIZE"),
			MaxPages:    os.Getenv("CATALOG_MAX_PAGES"),
			HTTPTimeout: os.Getenv("CATALOG_HTTP_TIMEOUT"),
		},
		Refresh: RefreshConfig{
			Schedule: os.Getenv("REFRESH_SCHEDULE"),
		},
		Logging: LoggingConfig{
			Level:       os.Getenv("LOG_LEVEL"),
			Format:      os.Getenv("LOG_FORMAT"),
			ServiceName: os.Getenv("SERVICE_NAME"),
		},
	}
}
