package main

import "time"

type Config struct {
	SessionBufferSize int           `env:"SESSION_BUFFER_SIZE,required=true"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,required=true"`
	LimitMessages     *int          `env:"HISTORY_LIMIT"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT,required=true"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	CountSyncInterval time.Duration `env:"COUNT_SYNC_INTERVAL,required=true"`
	StatsInterval     time.Duration `env:"STATS_INTERVAL,required=true"`
	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	DebugPort         int           `env:"DEBUG_PORT"`
}
