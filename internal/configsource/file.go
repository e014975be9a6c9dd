package configsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tallerhub/taller-status/internal/core"
)

// FileSource reads the configuration from a local JSON or YAML file. The file
// is re-read on every Load so edits are picked up by the next refresh.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (s *FileSource) Name() string { return "file:" + s.path }

// Load implements Source.
func (s *FileSource) Load(context.Context) (*core.SystemConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		cfg, err := parseYAMLConfig(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.path, err)
		}
		return cfg, nil
	default:
		cfg, err := core.ParseSystemConfig(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.path, err)
		}
		return cfg, nil
	}
}

// yamlSystemConfig keeps each status entry as a node so a bad entry can be
// skipped on its own, matching core.ParseSystemConfig.
type yamlSystemConfig struct {
	CarStatuses            []yaml.Node `yaml:"carStatuses"`
	ServiceRequestStatuses []yaml.Node `yaml:"serviceRequestStatuses"`
}

func parseYAMLConfig(data []byte) (*core.SystemConfig, error) {
	var raw yamlSystemConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := &core.SystemConfig{}
	cfg.CarStatuses, cfg.Dropped = decodeYAMLStatuses(raw.CarStatuses)
	var dropped int
	cfg.ServiceRequestStatuses, dropped = decodeYAMLStatuses(raw.ServiceRequestStatuses)
	cfg.Dropped += dropped
	return cfg, nil
}

func decodeYAMLStatuses(nodes []yaml.Node) ([]core.Status, int) {
	out := make([]core.Status, 0, len(nodes))
	dropped := 0
	for i := range nodes {
		var st core.Status
		if err := nodes[i].Decode(&st); err != nil {
			dropped++
			continue
		}
		out = append(out, st)
	}
	return out, dropped
}
