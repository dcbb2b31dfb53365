package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"

	logx "ffbot/pkg/logx"
)

// Validator is an extra check run on reloaded configs before they are published.
type Validator func(ctx context.Context, cfg *Config) error

// ConfigManager owns the current Config. With a file path it can also watch
// the file and publish valid changes (see Watch).
type ConfigManager struct {
	path string

	mu      sync.RWMutex
	cfg     *Config
	sum     uint64
	log     logx.Logger
	checkFn Validator

	subMu sync.Mutex
	subs  map[chan *Config]struct{}
}

func NewConfigManager(path string) *ConfigManager {
	return &ConfigManager{
		path: strings.TrimSpace(path),
		log:  logx.Nop(),
		subs: make(map[chan *Config]struct{}),
	}
}

func (m *ConfigManager) Path() string { return m.path }

func (m *ConfigManager) SetLogger(log logx.Logger) {
	if log.IsZero() {
		log = logx.Nop()
	}
	m.mu.Lock()
	m.log = log
	m.mu.Unlock()
}

func (m *ConfigManager) SetValidator(fn Validator) {
	m.mu.Lock()
	m.checkFn = fn
	m.mu.Unlock()
}

// Parse layers Default(), the optional file and the environment. It does not validate.
func (m *ConfigManager) Parse() (*Config, error) {
	cfg := Default()
	if m.path != "" {
		raw, err := os.ReadFile(m.path)
		if err != nil {
			return nil, err
		}
		if err := decodeInto(m.path, raw, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", m.path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load parses and validates the config and makes it current.
func (m *ConfigManager) Load() (*Config, error) {
	cfg, err := m.Parse()
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	m.Commit(cfg)
	return cfg, nil
}

func (m *ConfigManager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *ConfigManager) Commit(cfg *Config) {
	sum := checksum(cfg)
	m.mu.Lock()
	m.cfg = cfg
	m.sum = sum
	m.mu.Unlock()
}

// Subscribe returns a channel that receives every published config. A slow
// subscriber only ever misses intermediate versions, never the latest one.
func (m *ConfigManager) Subscribe(buffer int) chan *Config {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *Config, buffer)
	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()
	return ch
}

func (m *ConfigManager) Unsubscribe(ch chan *Config) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if _, ok := m.subs[ch]; !ok {
		return
	}
	delete(m.subs, ch)
	close(ch)
}

func (m *ConfigManager) publish(cfg *Config) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subs {
		for {
			select {
			case ch <- cfg:
			default:
				// full: discard the oldest pending config and try again
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// reload re-reads the file and publishes it if it changed and passes validation.
// It reports whether a new config was published.
func (m *ConfigManager) reload(ctx context.Context) (bool, error) {
	cfg, err := m.Parse()
	if err != nil {
		return false, err
	}
	sum := checksum(cfg)

	m.mu.RLock()
	same := sum != 0 && sum == m.sum
	check := m.checkFn
	m.mu.RUnlock()
	if same {
		return false, nil
	}

	if err := Validate(cfg); err != nil {
		return false, err
	}
	if check != nil {
		if err := check(ctx, cfg); err != nil {
			return false, err
		}
	}
	m.Commit(cfg)
	m.publish(cfg)
	return true, nil
}

func (m *ConfigManager) logger() logx.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.log
}

// decodeInto strictly decodes a JSON or YAML document over cfg.
// Fields absent from the document keep their current values.
func decodeInto(path string, raw []byte, cfg *Config) error {
	doc, err := toJSON(path, raw)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	switch err := dec.Decode(&struct{}{}); {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return errors.New("trailing data after config document")
	default:
		return err
	}
}

func checksum(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
