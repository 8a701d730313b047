package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv       string
	LogLevel     string
	Server       Server
	Database     Database
	Redis        Redis
	Auth         Auth
	Localization Localization
	Tracing      Tracing
}

type Server struct {
	Port string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string `json:"-"`
	Name     string
	SSLMode  string
}

type Redis struct {
	Addr     string
	Password string `json:"-"`
	DB       int
}

type Auth struct {
	JWTSecret string `json:"-"`
}

type Localization struct {
	CacheTTL time.Duration
}

type Tracing struct {
	Enabled     bool
	ServiceName string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("LOCALIZATION_CACHE_TTL", "10m")
	viper.SetDefault("SERVICE_NAME", "jlpt-assessment")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.AppEnv = viper.GetString("APP_ENV")
	config.LogLevel = viper.GetString("LOG_LEVEL")
	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Driver = viper.GetString("DATABASE_DRIVER")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")

	config.Localization.CacheTTL = viper.GetDuration("LOCALIZATION_CACHE_TTL")

	config.Tracing.Enabled = viper.GetBool("TRACING_ENABLED")
	config.Tracing.ServiceName = viper.GetString("SERVICE_NAME")

	if config.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set. Every authenticated request will be rejected.")
	}

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil
}
