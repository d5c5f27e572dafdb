package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Overrides carries settings taken from the process environment.
// Empty fields mean "not set".
type Overrides struct {
	Port  string
	Debug bool
}

// LoadOverrides reads EnvPort and EnvDebug, loading a .env file from the
// working directory first when one exists. Variables already present in the
// environment are never replaced by the file.
func LoadOverrides() Overrides {
	_ = godotenv.Load()

	o := Overrides{
		Port: strings.TrimSpace(os.Getenv(EnvPort)),
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		o.Debug, _ = strconv.ParseBool(v)
	}
	return o
}

// ResolvePort picks the first non-empty port: flag, environment, stored
// preference, then DefaultPort.
func ResolvePort(flagPort, envPort, storedPort string) string {
	for _, p := range []string{flagPort, envPort, storedPort} {
		if p = strings.TrimSpace(p); p != "" {
			return p
		}
	}
	return DefaultPort
}
