package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/briefguard/internal/model"
)

// LoadRequest reads a request file. YAML is used for .yaml/.yml files, JSON
// otherwise. A rawFile reference is resolved relative to the request file and
// its content replaces Raw.
func LoadRequest(path string) (*model.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}

	req := &model.Request{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("parse request %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("parse request %s: %w", path, err)
		}
	}

	if req.RawFile != "" {
		rawPath := req.RawFile
		if !filepath.IsAbs(rawPath) {
			rawPath = filepath.Join(filepath.Dir(path), rawPath)
		}
		raw, err := os.ReadFile(rawPath)
		if err != nil {
			return nil, fmt.Errorf("read raw output: %w", err)
		}
		req.Raw = string(raw)
	}

	if req.ID == "" {
		req.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return req, nil
}

// LoadCorpus reads the corpus and indicator references of a request file,
// ignoring any raw output it carries
func LoadCorpus(path string) ([]model.CorpusEntry, []model.IndicatorRef, error) {
	req, err := LoadRequest(path)
	if err != nil {
		return nil, nil, err
	}
	return req.Corpus, req.Indicators, nil
}
