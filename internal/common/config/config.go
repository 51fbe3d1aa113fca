package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Mongo struct {
		URI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
		Database string `env:"MONGODB_DATABASE" envDefault:"marketplace"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`

		// TTL for cached token -> account lookups
		AuthCacheTTL time.Duration `env:"AUTH_CACHE_TTL" envDefault:"5m"`
	}

	S3 struct {
		Endpoint  string `env:"S3_ENDPOINT" envDefault:"http://localhost:9000"`
		Region    string `env:"S3_REGION" envDefault:"us-east-1"`
		AccessKey string `env:"S3_ACCESS_KEY,required"`
		SecretKey string `env:"S3_SECRET_KEY,required"`
		Bucket    string `env:"S3_BUCKET" envDefault:"marketplace"`

		// Base URL used to build externally servable asset links
		PublicBaseURL string `env:"S3_PUBLIC_BASE_URL" envDefault:"http://localhost:9000"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env is optional; in production variables are set directly
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
