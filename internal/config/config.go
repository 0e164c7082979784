package config

import (
	"time"

	"github.com/appstrap/appstrap/internal/mysql"
)

// Config holds all configuration for the appstrap application service
type Config struct {
	// Server configuration
	Host string
	Port int

	// Shutdown configuration
	ShutdownGracePeriod time.Duration

	// Database configuration
	Database mysql.Config
}
