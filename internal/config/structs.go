package config

import (
	"time"

	"github.com/shopkeep/shopkeep/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool          // disable recover middleware
	Domain         string        // domain name for session cookies
	Port           int           // listening port for the webserver
	ShutDownTime   int           // wait time for shutdown in seconds
	URL            string        // base url for the webserver
	ReadTimeout    time.Duration // per request read timeout
	WriteTimeout   time.Duration // per request write timeout
	Session        Session       // session settings

	// Upstreams maps a guarded resource route group (products, orders, ...)
	// to the base URL of the service that owns it. Requests passing the
	// permission check are forwarded there.
	Upstreams map[string]string
}
