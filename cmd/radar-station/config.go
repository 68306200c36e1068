package main

import (
	"os"
	"strconv"
)

// config is loaded from environment variables; every setting has a default.
type config struct {
	Device string // serial device path, empty means no device attached
	Baud   int
	Addr   string // HTTP listen address
	Debug  bool   // enables per-request logging
}

func loadConfig() config {
	return config{
		Device: getEnv("SERIAL_DEVICE", ""),
		Baud:   getEnvInt("SERIAL_BAUD", 115200),
		Addr:   getEnv("SERVER_ADDR", ":5001"),
		Debug:  os.Getenv("DEBUG") == "true" || os.Getenv("DEBUG") == "1",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
