package main

import (
	"os"
	"path/filepath"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultHome() string {
	return env("HLWALLET_HOME", filepath.Join(os.Getenv("HOME"), ".hlwallet"))
}

func defaultKeyPath() string {
	return env("HLWALLET_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".hlwallet.priv.key"))
}

func defaultLogLevel() string {
	return env("HLWALLET_LOG_LEVEL", "info")
}
