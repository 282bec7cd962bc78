package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ModelOption is one selectable entry of the model catalog exposed to the frontend.
type ModelOption struct {
	ID          string `json:"id" toml:"id"`
	Label       string `json:"label" toml:"label"`
	Description string `json:"description,omitempty" toml:"description"`
}

// Capability is a line of the "Model Capabilities" panel.
type Capability struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// Seed provides the default DeepSeek variants served by a local Ollama.
func Seed() []ModelOption {
	return []ModelOption{
		{
			ID:          "deepseek-r1:1.5b",
			Label:       "DeepSeek R1 1.5B",
			Description: "Small and fast, fits on most laptops.",
		},
		{
			ID:          "deepseek-r1:3b",
			Label:       "DeepSeek R1 3B",
			Description: "Slightly larger, better at multi-step reasoning.",
		},
	}
}

// Capabilities lists what the assistant is advertised to help with.
func Capabilities() []Capability {
	return []Capability{
		{Icon: "🐍", Label: "Python Expert"},
		{Icon: "🐞", Label: "Debugging Assistant"},
		{Icon: "📝", Label: "Code Documentation"},
		{Icon: "💡", Label: "Solution Design"},
	}
}

type catalogFile struct {
	Models []ModelOption `toml:"models"`
}

// LoadFile reads a TOML catalog of [[models]] tables. Entries without an id
// are rejected, a missing label falls back to the id.
func LoadFile(path string) ([]ModelOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var file catalogFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("catalog %s declares no models", path)
	}

	seen := make(map[string]struct{}, len(file.Models))
	items := make([]ModelOption, 0, len(file.Models))
	for i, item := range file.Models {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return nil, fmt.Errorf("catalog %s: model #%d has no id", path, i+1)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate model %q", path, item.ID)
		}
		seen[item.ID] = struct{}{}
		if strings.TrimSpace(item.Label) == "" {
			item.Label = item.ID
		}
		items = append(items, item)
	}
	return items, nil
}
