package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Log      Log
	Exam     Exam
}

type Server struct {
	Port string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	DSN      string // overrides the discrete fields when set
}

type Auth struct {
	JWTSecret string `json:"-"`
}

type Log struct {
	Level  string
	Pretty bool
}

type Exam struct {
	// EnforceDeadline rejects answers received after started_at + duration_minutes.
	EnforceDeadline bool
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)
	viper.SetDefault("EXAM_ENFORCE_DEADLINE", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Driver = viper.GetString("DATABASE_DRIVER")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.DSN = viper.GetString("DATABASE_DSN")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")

	config.Log.Level = viper.GetString("LOG_LEVEL")
	config.Log.Pretty = viper.GetBool("LOG_PRETTY")

	config.Exam.EnforceDeadline = viper.GetBool("EXAM_ENFORCE_DEADLINE")

	if config.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, every authenticated request will be rejected")
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("db_driver", config.Database.Driver).
		Str("db_host", config.Database.Host).
		Str("db_name", config.Database.Name).
		Bool("enforce_deadline", config.Exam.EnforceDeadline).
		Msg("Config loaded")
	return &config, nil
}
