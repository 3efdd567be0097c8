package config

import "os"

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

// BasePath is the prefix the HTTP routes are mounted under, if any.
func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

// Addr is the listen address: APP_ADDR, or APP_PORT on all interfaces,
// falling back to :8080.
func Addr() string {
	if addr, ok := os.LookupEnv("APP_ADDR"); ok {
		return addr
	}
	if port, ok := os.LookupEnv("APP_PORT"); ok {
		return ":" + port
	}
	return ":8080"
}
