package config

import (
	"time"
)

// Config represents the main configuration for a mesh client node
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Transport TransportConfig `yaml:"transport"`
	Params    ParamsConfig    `yaml:"params"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NodeConfig contains node identity configuration
type NodeConfig struct {
	Name      string `yaml:"name"`      // Node name, no path separators
	Namespace string `yaml:"namespace"` // Absolute namespace, defaults to "/"
}

// TransportConfig contains pub/sub transport configuration
type TransportConfig struct {
	ListenAddresses []string      `yaml:"listen_addresses"` // LibP2P listen multiaddrs
	BootstrapPeers  []string      `yaml:"bootstrap_peers"`  // Peers dialed on startup
	TopicPrefix     string        `yaml:"topic_prefix"`     // Mesh-wide topic namespace
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

// ParamsConfig contains defaults for the parameter-events layer
type ParamsConfig struct {
	// TopicStatisticsDefault is the node-level default consulted when a
	// subscription leaves its topic statistics state at NodeDefault.
	TopicStatisticsDefault bool `yaml:"topic_statistics_default"`

	// QoSDepth is the history depth requested for the parameter events
	// subscription. Opaque to the dispatcher.
	QoSDepth int `yaml:"qos_depth"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// DefaultConfig returns a configuration with sensible defaults for a
// node joining a local mesh.
func DefaultConfig(nodeName string) *Config {
	return &Config{
		Node: NodeConfig{
			Name:      nodeName,
			Namespace: "/",
		},
		Transport: TransportConfig{
			ListenAddresses: []string{"/ip4/0.0.0.0/tcp/0"},
			BootstrapPeers:  nil,
			TopicPrefix:     "rovermesh",
			ConnectTimeout:  30 * time.Second,
		},
		Params: ParamsConfig{
			TopicStatisticsDefault: false,
			QoSDepth:               10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
