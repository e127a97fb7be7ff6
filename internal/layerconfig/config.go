// Package layerconfig loads a layer or interface's configuration document
// (composer.yaml / interface.yaml) and exposes its recognised keys, the
// "Layer & Interface loader" component of spec.md §2.
package layerconfig

import (
	"context"
	"fmt"

	"github.com/compotron/compose/internal/domain"
	"github.com/compotron/compose/internal/ignore"
)

// layerConfigFilename is the layer-level config document name. Interfaces
// use a distinct name (interfaceConfigFilename) but share this loader.
const (
	layerConfigFilename     = "composer.yaml"
	interfaceConfigFilename = "interface.yaml"
)

// Config is the parsed, typed view over a layer or interface's raw
// Document, exposing exactly the recognised keys from spec.md §4.2.
type Config struct {
	// Raw is the full decoded document, kept so tactics needing extra
	// keys (e.g. ComposerYAML rewriting `is`) can still reach them.
	Raw domain.Document

	Includes        []domain.LayerRef
	Ignore          []string
	Tactics         []string
	MetadataDeletes []string
	ConfigDeletes   []string
	Is              string
	Name            string

	// Configured reports whether a config file existed and was non-empty.
	Configured bool
}

// Load reads and parses dir/composer.yaml (or interface.yaml when
// forInterface is true). A missing file is not an error for a base
// layer — it yields an unconfigured, empty Config; the resolver enforces
// that the *top* layer must be configured. A non-nil validator checks the
// parsed document against the layer-config JSON Schema before Config is
// built; nil skips validation.
func Load(ctx context.Context, vfs domain.FS, dir domain.AbsPath, forInterface bool, validator *Validator) domain.Result[*Config] {
	filename := layerConfigFilename
	if forInterface {
		filename = interfaceConfigFilename
	}
	path := dir.Join(filename)

	if !vfs.Exists(ctx, path.String()) {
		return domain.Ok(&Config{Raw: domain.Document{}, Configured: false})
	}

	data, err := vfs.ReadFile(ctx, path.String())
	if err != nil {
		return domain.Err[*Config](domain.MalformedConfig{Path: path.String(), Reason: err.Error()})
	}
	if len(bytesTrimSpace(data)) == 0 {
		return domain.Ok(&Config{Raw: domain.Document{}, Configured: false})
	}

	docRes := domain.ParseDocument(data)
	if docRes.IsErr() {
		return domain.Err[*Config](withPath(docRes.UnwrapErr(), path.String()))
	}
	doc := docRes.Unwrap()

	if validator != nil {
		if err := validator.Validate(path.String(), doc); err != nil {
			return domain.Err[*Config](err)
		}
	}

	cfg := &Config{Raw: doc, Configured: true}

	if err := cfg.fillIncludes(doc); err != nil {
		return domain.Err[*Config](withPath(err, path.String()))
	}
	cfg.Ignore = stringSlice(doc["ignore"])
	cfg.Tactics = stringSlice(doc["tactics"])
	cfg.Is, _ = doc["is"].(string)
	cfg.Name, _ = doc["name"].(string)

	if metadata, ok := doc["metadata"].(map[string]interface{}); ok {
		cfg.MetadataDeletes = stringSlice(metadata["deletes"])
	}
	if config, ok := doc["config"].(map[string]interface{}); ok {
		cfg.ConfigDeletes = stringSlice(config["deletes"])
	}

	return domain.Ok(cfg)
}

func (c *Config) fillIncludes(doc domain.Document) error {
	raw, ok := doc["includes"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		c.Includes = []domain.LayerRef{domain.NewLayerRef(v)}
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("includes entry must be a string, got %T", item)
			}
			c.Includes = append(c.Includes, domain.NewLayerRef(s))
		}
	default:
		return fmt.Errorf("includes must be a string or a sequence of strings, got %T", raw)
	}
	return nil
}

// IgnoreSet builds the ignore.Set for entries contributed by the layer
// *below* this config (spec.md §3: "Ignore patterns of layer L+1 apply to
// entries contributed by layer L").
func (c *Config) IgnoreSet() domain.Result[*ignore.Set] {
	return ignore.NewSet(c.Ignore)
}

func stringSlice(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		if s, ok := raw.(string); ok {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func bytesTrimSpace(b []byte) []byte {
	start, end := 0, len(b)
	isSpace := func(c byte) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r'
	}
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func withPath(err error, path string) error {
	if mc, ok := err.(domain.MalformedConfig); ok {
		mc.Path = path
		return mc
	}
	return err
}
