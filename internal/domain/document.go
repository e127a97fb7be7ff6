package domain

import (
	"encoding/json"

	"dario.cat/mergo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// Document is a decoded structured document (metadata.yaml, config.yaml,
// composer.yaml, interface.yaml): a recursive variant of mapping, sequence,
// and scalar, per §9's "dotted-path mutation of documents" design note.
// It is represented as the result of decoding YAML into Go's generic
// map[string]interface{} form, which is what yaml.v3, mergo, gjson, and
// sjson all operate on natively.
type Document map[string]interface{}

// ParseDocument decodes a YAML document into a Document. An empty or
// whitespace-only input decodes to an empty Document rather than an error,
// since several inputs (ignore lists with no config) are optional.
func ParseDocument(data []byte) Result[Document] {
	var out Document
	if err := yaml.Unmarshal(data, &out); err != nil {
		return Err[Document](MalformedConfig{Reason: err.Error()})
	}
	if out == nil {
		out = Document{}
	}
	return Ok(out)
}

// DeepMerge merges src into dst, mapping-into-mapping recursing and
// everything else (scalars, sequences, type mismatches) replacing —
// the same rule as the original juju_compose.utils.deepmerge, expressed
// here via mergo.WithOverride so src always wins on conflict.
func DeepMerge(dst, src Document) Result[Document] {
	if dst == nil {
		dst = Document{}
	}
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return Err[Document](MalformedConfig{Reason: "merge failed: " + err.Error()})
	}
	return Ok(dst)
}

// DeletePath removes a dotted path from doc, navigating each level as a
// mapping and failing fast when an intermediate key or the leaf itself is
// absent, mirroring juju_compose.utils.delete_path. Paths never contain
// literal dots in a key; the dotted-path source format forbids it.
func DeletePath(doc Document, dottedPath string) Result[Document] {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Err[Document](MalformedConfig{Reason: err.Error()})
	}
	if !gjson.GetBytes(raw, dottedPath).Exists() {
		return Err[Document](InvalidDelete{Path: dottedPath})
	}
	updated, err := sjson.DeleteBytes(raw, dottedPath)
	if err != nil {
		return Err[Document](InvalidDelete{Path: dottedPath})
	}
	var out Document
	if err := json.Unmarshal(updated, &out); err != nil {
		return Err[Document](MalformedConfig{Reason: err.Error()})
	}
	return Ok(out)
}

// GetPath reads a dotted path from doc via gjson, returning false if absent.
func GetPath(doc Document, dottedPath string) (gjson.Result, bool) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return gjson.Result{}, false
	}
	res := gjson.GetBytes(raw, dottedPath)
	return res, res.Exists()
}

// MarshalYAML re-encodes a Document back into canonical YAML bytes for
// writing to the output tree.
func MarshalYAML(doc Document) Result[[]byte] {
	out, err := yaml.Marshal(map[string]interface{}(doc))
	if err != nil {
		return Err[[]byte](MalformedConfig{Reason: err.Error()})
	}
	return Ok(out)
}

// Clone returns a deep copy of doc via its JSON round-trip — sufficient
// since Documents only ever hold JSON-representable values (decoded YAML
// scalars, mappings, sequences).
func (d Document) Clone() Document {
	raw, err := json.Marshal(d)
	if err != nil {
		return Document{}
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return Document{}
	}
	return out
}
