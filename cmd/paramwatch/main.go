package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovermesh/rovermesh/pkg/config"
	"github.com/rovermesh/rovermesh/pkg/logging"
	"github.com/rovermesh/rovermesh/pkg/node"
	"github.com/rovermesh/rovermesh/pkg/params"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (overrides defaults)")
	name := flag.String("name", "paramwatch", "Node name")
	namespace := flag.String("namespace", "/", "Node namespace (absolute)")
	peer := flag.String("peer", "", "Bootstrap peer multiaddr to dial")
	watchParam := flag.String("watch", "", "Parameter name to watch")
	watchNode := flag.String("node", "", "Node owning the watched parameter (empty = local node)")
	all := flag.Bool("all", false, "Watch every parameter event on the mesh")
	set := flag.String("set", "", "Publish a changed value as name=value and exit")
	setType := flag.String("type", "string", "Value type for -set: bool, int, double, string")
	flag.Parse()

	logger, err := logging.NewColoredLogger(logging.ComponentClient, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath, *name, *namespace, *peer)
	if err != nil {
		logger.ComponentError(logging.ComponentClient, "Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := node.New(cfg, logger.Logger)
	if err != nil {
		logger.ComponentError(logging.ComponentNode, "Failed to create node", zap.Error(err))
		os.Exit(1)
	}
	if err := n.Start(ctx); err != nil {
		logger.ComponentError(logging.ComponentNode, "Failed to start node", zap.Error(err))
		os.Exit(1)
	}
	defer n.Close()

	if *set != "" {
		if err := publishChange(ctx, n, *set, *setType); err != nil {
			logger.ComponentError(logging.ComponentParams, "Failed to publish change", zap.Error(err))
			os.Exit(1)
		}
		// Give gossip a moment to propagate before tearing down.
		time.Sleep(2 * time.Second)
		return
	}

	sub, err := params.NewSubscriberForNode(ctx, n, params.DefaultSubscriptionOptions())
	if err != nil {
		logger.ComponentError(logging.ComponentParams, "Failed to subscribe to parameter events", zap.Error(err))
		os.Exit(1)
	}
	defer sub.Close(ctx)

	var handles []interface{}
	if *all || *watchParam == "" {
		h := sub.AddParameterEventCallback(func(ev *params.ParameterEvent) {
			for _, p := range ev.NewParameters {
				logger.ComponentInfo(logging.ComponentParams, "new parameter",
					zap.String("node", ev.Node), zap.String("name", p.Name), zap.Any("value", p.Value.Interface()))
			}
			for _, p := range ev.ChangedParameters {
				logger.ComponentInfo(logging.ComponentParams, "changed parameter",
					zap.String("node", ev.Node), zap.String("name", p.Name), zap.Any("value", p.Value.Interface()))
			}
			for _, p := range ev.DeletedParameters {
				logger.ComponentInfo(logging.ComponentParams, "deleted parameter",
					zap.String("node", ev.Node), zap.String("name", p.Name))
			}
		})
		handles = append(handles, h)
	} else {
		h := sub.AddParameterCallback(*watchParam, *watchNode, func(p params.Parameter) {
			logger.ComponentInfo(logging.ComponentParams, "parameter updated",
				zap.String("name", p.Name), zap.Any("value", p.Value.Interface()))
		})
		handles = append(handles, h)
	}

	logger.ComponentInfo(logging.ComponentClient, "Watching parameter events",
		zap.String("node", n.FullyQualifiedName()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	runtime.KeepAlive(handles)
	logger.ComponentInfo(logging.ComponentClient, "Shutting down")
}

func loadConfig(path, name, namespace, peer string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}

	cfg := config.DefaultConfig(name)
	cfg.Node.Namespace = namespace
	if peer != "" {
		cfg.Transport.BootstrapPeers = append(cfg.Transport.BootstrapPeers, peer)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func publishChange(ctx context.Context, n *node.Node, assignment, valueType string) error {
	name, raw, err := splitAssignment(assignment)
	if err != nil {
		return err
	}

	var p params.Parameter
	switch valueType {
	case "bool":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid bool %q: %w", raw, err)
		}
		p = params.BoolParameter(name, v)
	case "int":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int %q: %w", raw, err)
		}
		p = params.IntegerParameter(name, v)
	case "double":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid double %q: %w", raw, err)
		}
		p = params.DoubleParameter(name, v)
	case "string":
		p = params.StringParameter(name, raw)
	default:
		return fmt.Errorf("unsupported value type %q", valueType)
	}

	pub, err := params.NewPublisherForNode(n)
	if err != nil {
		return err
	}
	return pub.PublishChanged(ctx, p)
}

func splitAssignment(s string) (name, value string, err error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			if i == 0 {
				break
			}
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("expected name=value, got %q", s)
}
