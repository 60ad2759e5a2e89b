package config

import (
	"strings"

	"github.com/multiformats/go-multiaddr"

	"github.com/rovermesh/rovermesh/pkg/errors"
)

// Validate checks the configuration for internal consistency.
// All violations are reported as coded validation errors.
func (c *Config) Validate() error {
	if err := c.Node.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Validate checks node identity rules. Node names must be non-empty and
// free of path separators; namespaces are always absolute.
func (n *NodeConfig) Validate() error {
	if n.Name == "" {
		return errors.NewValidationError("node.name", "node name is required", n.Name)
	}
	if strings.Contains(n.Name, "/") {
		return errors.NewValidationError("node.name", "node name must not contain '/'", n.Name)
	}
	if n.Namespace == "" {
		return errors.NewValidationError("node.namespace", "namespace is required (use \"/\" for the root)", n.Namespace)
	}
	if !strings.HasPrefix(n.Namespace, "/") {
		return errors.NewValidationError("node.namespace", "namespace must start with '/'", n.Namespace)
	}
	if n.Namespace != "/" && strings.HasSuffix(n.Namespace, "/") {
		return errors.NewValidationError("node.namespace", "namespace must not end with '/'", n.Namespace)
	}
	return nil
}

// Validate checks transport addresses parse as multiaddrs.
func (t *TransportConfig) Validate() error {
	if len(t.ListenAddresses) == 0 {
		return errors.NewValidationError("transport.listen_addresses", "at least one listen address is required", nil)
	}
	for _, addr := range t.ListenAddresses {
		if _, err := multiaddr.NewMultiaddr(addr); err != nil {
			return errors.NewValidationError("transport.listen_addresses", "invalid multiaddr: "+addr, addr)
		}
	}
	for _, peer := range t.BootstrapPeers {
		if _, err := multiaddr.NewMultiaddr(peer); err != nil {
			return errors.NewValidationError("transport.bootstrap_peers", "invalid multiaddr: "+peer, peer)
		}
	}
	if t.TopicPrefix == "" {
		return errors.NewValidationError("transport.topic_prefix", "topic prefix is required", t.TopicPrefix)
	}
	if t.ConnectTimeout < 0 {
		return errors.NewValidationError("transport.connect_timeout", "connect timeout must not be negative", t.ConnectTimeout)
	}
	return nil
}

// Validate checks parameter-layer defaults.
func (p *ParamsConfig) Validate() error {
	if p.QoSDepth < 0 {
		return errors.NewValidationError("params.qos_depth", "qos depth must not be negative", p.QoSDepth)
	}
	return nil
}

// Validate checks logging settings against the supported sets.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("logging.level", "unsupported log level", l.Level)
	}
	switch l.Format {
	case "", "json", "console":
	default:
		return errors.NewValidationError("logging.format", "unsupported log format", l.Format)
	}
	return nil
}
