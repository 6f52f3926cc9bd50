// Package cli holds the configuration plumbing shared by the
// xmodem-send, xmodem-recv, and xmodem-term tools: the YAML config
// file format, flag merging, and transport wiring.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
	"github.com/xmodem-protocol/xmodem-go/pkg/xmodem"
)

// ErrNoTransport reports that no transport flag was given.
var ErrNoTransport = errors.New("no transport selected (need -port, -connect, or -stdio)")

// Options are the transfer settings shared by the CLI tools after
// flags and the optional config file have been merged.
type Options struct {
	// Port is the serial device path, empty when serial is not used.
	Port string

	// Baud is the serial line speed.
	Baud int

	// Connect is the TCP address to dial, empty when TCP is not used.
	Connect string

	// Stdio selects stdin/stdout as the transfer link.
	Stdio bool

	// Block is the payload size per frame, 128 or 1024.
	Block int

	// CRC selects CRC-16 block checks over the classic checksum.
	CRC bool

	// Timeout is the per-read timeout, 0 for the engine default.
	Timeout time.Duration

	// Retries is the per-block retry budget, 0 for the engine default.
	Retries int

	// Trace is the protocol trace file path, empty to disable tracing.
	Trace string
}

// FileConfig mirrors the YAML file accepted by the -config flag. Unset
// fields keep the values already resolved from flags.
type FileConfig struct {
	Port    string `yaml:"port"`
	Baud    int    `yaml:"baud"`
	Connect string `yaml:"connect"`
	Block   int    `yaml:"block"`
	CRC     *bool  `yaml:"crc"`
	Timeout string `yaml:"timeout"`
	Retries int    `yaml:"retries"`
	Trace   string `yaml:"trace"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// VisitedFlags returns the names of the command-line flags that were
// set explicitly. Must be called after flag.Parse.
func VisitedFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// ApplyFile merges file config values into the options. A value from
// the file applies only when the matching flag was not set explicitly,
// so flags always win over the file.
func ApplyFile(o *Options, file FileConfig, set map[string]bool) error {
	if file.Port != "" && !set["port"] {
		o.Port = file.Port
	}
	if file.Baud != 0 && !set["baud"] {
		o.Baud = file.Baud
	}
	if file.Connect != "" && !set["connect"] {
		o.Connect = file.Connect
	}
	if file.Block != 0 && !set["block"] {
		o.Block = file.Block
	}
	if file.CRC != nil && !set["crc"] {
		o.CRC = *file.CRC
	}
	if file.Timeout != "" && !set["timeout"] {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config file: %w", file.Timeout, err)
		}
		o.Timeout = d
	}
	if file.Retries != 0 && !set["retries"] {
		o.Retries = file.Retries
	}
	if file.Trace != "" && !set["trace"] {
		o.Trace = file.Trace
	}
	return nil
}

// ValidateTransfer checks the transfer settings that every tool needs,
// listen servers included.
func (o Options) ValidateTransfer() error {
	if o.Block != 128 && o.Block != 1024 {
		return fmt.Errorf("invalid block size %d (must be 128 or 1024)", o.Block)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", o.Timeout)
	}
	if o.Retries < 0 {
		return fmt.Errorf("negative retry count %d", o.Retries)
	}
	return nil
}

// ValidateTransport checks that exactly one outbound transport is
// selected.
func (o Options) ValidateTransport() error {
	selected := 0
	if o.Port != "" {
		selected++
	}
	if o.Connect != "" {
		selected++
	}
	if o.Stdio {
		selected++
	}
	if selected == 0 {
		return ErrNoTransport
	}
	if selected > 1 {
		return errors.New("choose exactly one of -port, -connect, -stdio")
	}
	return nil
}

// SessionConfig builds the engine configuration from the merged
// options.
func (o Options) SessionConfig(logger trace.Logger, endpoint string) xmodem.Config {
	cfg := xmodem.DefaultConfig()
	if o.Block != 0 {
		cfg.BlockSize = frame.BlockSize(o.Block)
	}
	if !o.CRC {
		cfg.Checksum = frame.ChecksumClassic
	}
	if o.Timeout != 0 {
		cfg.ReadTimeout = o.Timeout
	}
	if o.Retries != 0 {
		cfg.MaxRetries = o.Retries
	}
	cfg.Logger = logger
	cfg.Endpoint = endpoint
	return cfg
}

// Mode returns the transfer mode the options describe.
func (o Options) Mode() frame.Mode {
	kind := frame.ChecksumClassic
	if o.CRC {
		kind = frame.ChecksumCRC16
	}
	return frame.Mode{Size: frame.BlockSize(o.Block), Kind: kind}
}
