// Package config loads the settings of the vtester command from .env files
// and VTESTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded by Load when no file is named. It may be missing.
const DefaultEnvFile = ".env"

// The environment variables Load reads.
const (
	EnvTesterName  = "VTESTER_TESTER_NAME"
	EnvLogFile     = "VTESTER_LOG_FILE"
	EnvVerbose     = "VTESTER_VERBOSE"
	EnvTraceDB     = "VTESTER_TRACE_DB"
	EnvClickHouse  = "VTESTER_TRACE_CLICKHOUSE"
	EnvMonitor     = "VTESTER_MONITOR"
	EnvMonitorPort = "VTESTER_MONITOR_PORT"
	EnvOpenBrowser = "VTESTER_OPEN_BROWSER"
)

// Config holds the settings of a vtester run.
type Config struct {
	TesterName string

	// LogFile is the rotating log file. Empty means stderr only.
	LogFile string
	Verbose bool

	// TraceDB is the trace database path without the .sqlite3 suffix. Empty
	// means no database trace.
	TraceDB string

	// ClickHouse is the DSN of a ClickHouse database to trace into instead
	// of SQLite.
	ClickHouse string

	Monitor     bool
	MonitorPort int
	OpenBrowser bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TesterName: "j750",
	}
}

// Load reads the named .env files, or DefaultEnvFile if none is named, into
// the environment and builds a Config from it. Variables that are already set
// are not overridden by the files. A missing default file is ignored; a
// missing named file is an error.
func Load(files ...string) (Config, error) {
	if err := loadEnvFiles(files); err != nil {
		return Config{}, err
	}

	return FromEnv()
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: cannot load %s: %w", DefaultEnvFile, err)
		}

		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config: cannot load %s: %w",
			strings.Join(files, ", "), err)
	}

	return nil
}

// FromEnv builds a Config from the VTESTER_* variables only.
func FromEnv() (Config, error) {
	c := Default()
	c.TesterName = getEnvOrDefault(EnvTesterName, c.TesterName)
	c.LogFile = getEnvOrDefault(EnvLogFile, c.LogFile)
	c.TraceDB = getEnvOrDefault(EnvTraceDB, c.TraceDB)
	c.ClickHouse = getEnvOrDefault(EnvClickHouse, c.ClickHouse)

	var err error

	if c.Verbose, err = getEnvBool(EnvVerbose, c.Verbose); err != nil {
		return Config{}, err
	}

	if c.Monitor, err = getEnvBool(EnvMonitor, c.Monitor); err != nil {
		return Config{}, err
	}

	if c.OpenBrowser, err = getEnvBool(EnvOpenBrowser, c.OpenBrowser); err != nil {
		return Config{}, err
	}

	if c.MonitorPort, err = getEnvInt(EnvMonitorPort, c.MonitorPort); err != nil {
		return Config{}, err
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return Config{}, fmt.Errorf("config: %s=%d is not a port",
			EnvMonitorPort, c.MonitorPort)
	}

	if c.TraceDB != "" && c.ClickHouse != "" {
		return Config{}, fmt.Errorf("config: %s and %s cannot both be set",
			EnvTraceDB, EnvClickHouse)
	}

	return c, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}

	return i, nil
}

// getEnvBool accepts true, 1 and yes as true and false, 0 and no as false,
// case-insensitive.
func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}

	return false, fmt.Errorf("config: %s=%q is not a boolean", key, value)
}
