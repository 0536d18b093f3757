package internal

import (
	"strings"

	"github.com/samber/lo"
)

// Config is the slice of the hub's environment the side tools need:
// enough to open the database and serve the inspector.
type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	DebugPort      int    `env:"DEBUG_PORT,default=7777"`
}

// Origins splits the ALLOWED_ORIGINS list. An empty value allows every
// origin, which is only acceptable for local development.
func Origins(str string) []string {
	return lo.FilterMap(strings.Split(str, ","), func(p string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(p)
		return trimmed, trimmed != ""
	})
}
