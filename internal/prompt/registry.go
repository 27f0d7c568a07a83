// Package prompt holds the analysis prompt templates. Built-in defaults are
// always available; an optional yaml file overrides them and is hot-reloaded
// on change so prompts can be tuned without a restart.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"bitgyeol/internal/logger"
)

// Templates are Go text/template bodies rendered by the decision stages.
type Templates struct {
	NewsAnalysis  string `mapstructure:"news_analysis" yaml:"news_analysis"`
	PriceAnalysis string `mapstructure:"price_analysis" yaml:"price_analysis"`
	FinalDecision string `mapstructure:"final_decision" yaml:"final_decision"`
}

// Registry serves the active template set.
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	templates Templates
}

// NewRegistry loads templates from path when given, otherwise runs on the
// built-in defaults. A missing file is created from the defaults so operators
// have something to edit.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: strings.TrimSpace(path), templates: Defaults()}
	if r.path == "" {
		return r, nil
	}

	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		if err := writeDefaults(r.path); err != nil {
			return nil, fmt.Errorf("writing default prompts failed: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(r.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading prompts failed (%s): %w", r.path, err)
	}
	r.v = v
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("prompt reload failed: %v", err)
			return
		}
		logger.Infof("prompts reloaded from %s", evt.Name)
	})
	v.WatchConfig()
	return r, nil
}

func (r *Registry) reload() error {
	if err := r.v.ReadInConfig(); err != nil {
		return err
	}
	loaded := Defaults()
	if err := r.v.Unmarshal(&loaded); err != nil {
		return fmt.Errorf("parsing prompts failed: %w", err)
	}
	// Empty entries fall back to the defaults instead of blanking a stage.
	defaults := Defaults()
	if strings.TrimSpace(loaded.NewsAnalysis) == "" {
		loaded.NewsAnalysis = defaults.NewsAnalysis
	}
	if strings.TrimSpace(loaded.PriceAnalysis) == "" {
		loaded.PriceAnalysis = defaults.PriceAnalysis
	}
	if strings.TrimSpace(loaded.FinalDecision) == "" {
		loaded.FinalDecision = defaults.FinalDecision
	}
	r.mu.Lock()
	r.templates = loaded
	r.mu.Unlock()
	return nil
}

// Current returns the active template set.
func (r *Registry) Current() Templates {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates
}

func writeDefaults(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := yaml.Marshal(Defaults())
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
