package config

import (
	"os"
	"strconv"
)

// Environment variables read by ApplyEnv.
const (
	EnvBodies  = "GRAVQUAD_BODIES"
	EnvSeed    = "GRAVQUAD_SEED"
	EnvAddr    = "GRAVQUAD_ADDR"
	EnvFPS     = "GRAVQUAD_FPS"
	EnvWorkers = "GRAVQUAD_WORKERS"
)

// ApplyEnv overrides fields from the environment. Unset or unparsable
// variables leave the current value.
func (c *Config) ApplyEnv() {
	c.Bodies = getEnvInt(EnvBodies, c.Bodies)
	c.Seed = getEnvUint(EnvSeed, c.Seed)
	c.Server.Addr = getEnvWithDefault(EnvAddr, c.Server.Addr)
	c.Run.FPS = getEnvInt(EnvFPS, c.Run.FPS)
	c.Physics.Workers = getEnvInt(EnvWorkers, c.Physics.Workers)
}

func getEnvWithDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvUint(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return u
		}
	}
	return defaultVal
}
