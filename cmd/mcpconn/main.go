// Command mcpconn spawns an MCP server process, performs the initialize
// handshake and prints the capabilities the peer exposes. It doubles as a
// liveness checker via the keepalive probe.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/corewire/mcpconn"
	"github.com/corewire/mcpconn/client"
)

// Config mirrors the CLI surface so the same settings can come from a YAML
// file.
type Config struct {
	Client mcpconn.Options `yaml:"client" json:"client"`

	Command   string   `yaml:"command" json:"command" short:"C" long:"command" description:"server command"`
	Arguments []string `yaml:"arguments" json:"arguments" short:"A" long:"arguments" description:"server command arguments"`

	ConfigURL string `yaml:"-" json:"-" short:"c" long:"config" description:"yaml config file"`
	Verbose   bool   `yaml:"-" json:"-" long:"verbose" description:"debug logging"`
}

func main() {
	options := &Config{}
	if _, err := flags.ParseArgs(options, os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if options.ConfigURL != "" {
		data, err := os.ReadFile(options.ConfigURL)
		if err != nil {
			log.Fatalf("failed to read config: %v", err)
		}
		if err := yaml.Unmarshal(data, options); err != nil {
			log.Fatalf("failed to parse config: %v", err)
		}
	}
	if options.Command == "" {
		log.Fatal("command is required")
	}
	level := slog.LevelInfo
	if options.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(context.Background(), options); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, options *Config) error {
	registry := mcpconn.NewRegistry(&options.Client)
	defer func() {
		if err := registry.ShutdownAll(ctx); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}()

	conn, err := registry.ConnectCommand(ctx, "main", options.Command, options.Arguments)
	if err != nil {
		return err
	}
	result, err := conn.Initialize(ctx)
	if err != nil {
		return err
	}
	if err := conn.Initialized(ctx); err != nil {
		return err
	}
	fmt.Printf("connected: %s %s (protocol %s)\n", result.ServerInfo.Name, result.ServerInfo.Version, result.ProtocolVersion)

	if interval := options.Client.PingIntervalSeconds; interval > 0 {
		monitor := client.NewKeepaliveMonitor(conn,
			client.WithInterval(time.Duration(interval)*time.Second),
			client.WithProbeTimeout(time.Duration(options.Client.PingTimeoutSeconds)*time.Second),
			client.WithOnStale(func(failures int) {
				slog.Warn("peer stopped answering probes", "failures", failures)
			}))
		monitor.Start(ctx)
		defer monitor.Stop()
	}

	tools, err := conn.ListTools(ctx, nil)
	if err != nil {
		return err
	}
	for _, tool := range tools.Tools {
		description := ""
		if tool.Description != nil {
			description = *tool.Description
		}
		fmt.Printf("tool\t%s\t%s\n", tool.Name, description)
	}

	if alive := conn.Probe(ctx, 0); !alive {
		return fmt.Errorf("peer %s failed liveness probe", result.ServerInfo.Name)
	}
	return nil
}
