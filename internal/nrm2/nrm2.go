// Package nrm2 supplies the NRM2 cost element template used to pre-populate
// new cost models.
package nrm2

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//go:embed defaults.json
var defaultTemplate []byte

// Element is one NRM2 cost element.
type Element struct {
	Code          string `json:"code" mapstructure:"code"`
	Name          string `json:"name" mapstructure:"name"`
	SuggestedUnit string `json:"suggestedUnit" mapstructure:"suggestedUnit"`
	Description   string `json:"description,omitempty" mapstructure:"description"`
}

// Source returns the template elements in their original order.
type Source interface {
	Defaults() ([]Element, error)
}

// ConfigurationError reports a missing or malformed template source.
type ConfigurationError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nrm2 template %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("nrm2 template %s: %s", e.Source, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

var validUnits = map[string]struct{}{
	"m2": {}, "m3": {}, "m": {}, "nr": {}, "t": {}, "ls": {},
}

// Provider loads the template once and serves it from memory until the
// cache is cleared.
type Provider struct {
	path string
	log  *zap.Logger

	mu       sync.Mutex
	elements []Element
	loaded   bool
}

// NewProvider reads from path when set, otherwise from the built-in list.
func NewProvider(path string, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		path: strings.TrimSpace(path),
		log:  log.Named("nrm2"),
	}
}

// Load reads and validates the template, bypassing the cache.
func (p *Provider) Load() ([]Element, error) {
	v := viper.New()
	source := "embedded"
	if p.path == "" {
		v.SetConfigType("json")
		if err := v.ReadConfig(bytes.NewReader(defaultTemplate)); err != nil {
			return nil, &ConfigurationError{Source: source, Reason: "unreadable", Err: err}
		}
	} else {
		source = p.path
		v.SetConfigFile(p.path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigurationError{Source: source, Reason: "unreadable", Err: err}
		}
	}

	var elements []Element
	if err := v.UnmarshalKey("elements", &elements); err != nil {
		return nil, &ConfigurationError{Source: source, Reason: "elements must be a list", Err: err}
	}
	if err := validate(elements); err != nil {
		return nil, &ConfigurationError{Source: source, Reason: err.Error()}
	}
	return elements, nil
}

// Defaults returns the cached template, loading it on first use.
func (p *Provider) Defaults() ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		elements, err := p.Load()
		if err != nil {
			p.log.Error("failed to load nrm2 template", zap.Error(err))
			return nil, err
		}
		p.elements = elements
		p.loaded = true
		p.log.Info("nrm2 template loaded", zap.Int("elements", len(elements)))
	}

	out := make([]Element, len(p.elements))
	copy(out, p.elements)
	return out, nil
}

// ClearCache forces the next Defaults call to reload.
func (p *Provider) ClearCache() {
	p.mu.Lock()
	p.elements = nil
	p.loaded = false
	p.mu.Unlock()
}

// Watch clears the cache whenever the template file changes. It is a no-op
// for the embedded template.
func (p *Provider) Watch() error {
	if p.path == "" {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(p.path)
	if err := v.ReadInConfig(); err != nil {
		return &ConfigurationError{Source: p.path, Reason: "unreadable", Err: err}
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		p.ClearCache()
		p.log.Info("nrm2 template changed, cache cleared", zap.String("file", e.Name))
	})
	v.WatchConfig()
	return nil
}

func validate(elements []Element) error {
	if len(elements) == 0 {
		return fmt.Errorf("no elements defined")
	}
	for i, el := range elements {
		if strings.TrimSpace(el.Code) == "" {
			return fmt.Errorf("element %d: code is required", i)
		}
		if strings.TrimSpace(el.Name) == "" {
			return fmt.Errorf("element %d: name is required", i)
		}
		if _, ok := validUnits[el.SuggestedUnit]; !ok {
			return fmt.Errorf("element %d: unsupported unit %q", i, el.SuggestedUnit)
		}
	}
	return nil
}
