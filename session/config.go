package session

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"

	"github.com/000haoji/deep-student-sub016/core/chat"
)

// Panel names a UI panel whose visibility flag the session tracks. The set
// is fixed; SetPanel rejects names outside it.
type Panel string

const (
	PanelSidebar     Panel = "sidebar"
	PanelSettings    Panel = "settings"
	PanelAttachments Panel = "attachments"
	PanelHistory     Panel = "history"
)

func defaultPanels() map[Panel]bool {
	return map[Panel]bool{
		PanelSidebar:     true,
		PanelSettings:    false,
		PanelAttachments: false,
		PanelHistory:     false,
	}
}

// Config holds the default session state applied to every new store: initial
// generation parameters, feature toggles, and panel visibility. This is the
// engine's parameter defaults source; ResetChatParams returns a store to
// these values.
type Config struct {
	Params   chat.Params     `json:"params"`
	Features map[string]bool `json:"features,omitempty"`
	Panels   map[Panel]bool  `json:"panels,omitempty"`
}

// DefaultConfig returns sensible defaults for all session state.
func DefaultConfig() Config {
	return Config{
		Params: chat.Params{
			Model:        "qwen3:8b",
			Temperature:  0.7,
			ContextLimit: 8192,
			MaxTokens:    2048,
		},
		Features: map[string]bool{},
		Panels:   defaultPanels(),
	}
}

// Merge applies non-zero values from source into c. Feature and panel maps
// merge per key.
func (c *Config) Merge(source *Config) {
	if source.Params.Model != "" {
		c.Params.Model = source.Params.Model
	}
	if source.Params.Temperature != 0 {
		c.Params.Temperature = source.Params.Temperature
	}
	if source.Params.ContextLimit != 0 {
		c.Params.ContextLimit = source.Params.ContextLimit
	}
	if source.Params.MaxTokens != 0 {
		c.Params.MaxTokens = source.Params.MaxTokens
	}
	if source.Params.ThinkingEnabled {
		c.Params.ThinkingEnabled = true
	}
	if source.Params.ToolsDisabled {
		c.Params.ToolsDisabled = true
	}
	if source.Params.OverrideModel != "" {
		c.Params.OverrideModel = source.Params.OverrideModel
	}

	if len(source.Features) > 0 {
		if c.Features == nil {
			c.Features = make(map[string]bool, len(source.Features))
		}
		maps.Copy(c.Features, source.Features)
	}
	if len(source.Panels) > 0 {
		if c.Panels == nil {
			c.Panels = defaultPanels()
		}
		for name, on := range source.Panels {
			if _, known := c.Panels[name]; known {
				c.Panels[name] = on
			}
		}
	}
}

// LoadConfig reads a JSON config file and merges it over DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
