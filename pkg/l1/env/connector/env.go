// Package connector sets up connections from tools to L1 controllers.
package connector

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/maqueen.go/pkg/l1"
	"github.com/robotalks/maqueen.go/pkg/l1/comm/mqtt"
)

// Config provides common options to setup Connectors.
type Config struct {
	// Ref is the controller to connect, given as TYPE/ID.
	Ref l1.ControllerRef

	// RegistryURL specifies the URL of controller registry.
	// e.g. mqtt://host:port/topic-prefix
	RegistryURL string
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/robo/",
}

func init() {
	if err := defaultConfig.Ref.Set(os.Getenv("ROBO_TARGET")); err != nil {
		glog.Warningf("ROBO_TARGET: %v", err)
	}
	if val := os.Getenv("ROBO_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.Var(&defaultConfig.Ref, "target", "Controller to connect, as TYPE/ID.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Controller registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "ssl", "ws", "wss":
		return mqtt.NewConnector(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		glog.Exit(err)
	}
	return conn
}

// Connect directly connects to L1 controller.
func (c *Config) Connect() (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, errors.New("no target controller, use -target TYPE/ID")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background(), c.Ref)
}

// MustConnect connects to L1 controller for fail.
func (c *Config) MustConnect() l1.ControllerConn {
	conn, err := c.Connect()
	if err != nil {
		glog.Exit(err)
	}
	return conn
}
