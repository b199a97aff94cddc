package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o.
const (
	formatText = "text"
	formatTOML = "toml"
	formatYAML = "yaml"
	formatJSON = "json"
)

func unsupportedFormat(format string, allowed ...string) error {
	return saerrors.UserError{
		Message:    fmt.Sprintf("Unsupported output format %q", format),
		Suggestion: fmt.Sprintf("Use one of: %v", allowed),
	}
}

// writeSections renders whole sections, keeping save order for YAML.
func writeSections(w io.Writer, format string, def *config.Definition) error {
	switch format {
	case formatTOML:
		return def.Encode(w)
	case formatYAML:
		doc := &yaml.Node{Kind: yaml.MappingNode}
		for _, s := range def.Sections() {
			doc.Content = append(doc.Content, scalarNode(s.Name), mapNode(s.Values))
		}
		return encodeYAML(w, doc)
	case formatJSON:
		out := make(map[string]map[string]string)
		for _, s := range def.Sections() {
			out[s.Name] = s.Values
		}
		return encodeJSON(w, out)
	}
	return unsupportedFormat(format, formatTOML, formatYAML, formatJSON)
}

// writeValues renders one flat parameter map.
func writeValues(w io.Writer, format string, values map[string]string) error {
	switch format {
	case formatText:
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s = %s\n", k, values[k]); err != nil {
				return err
			}
		}
		return nil
	case formatYAML:
		return encodeYAML(w, mapNode(values))
	case formatJSON:
		return encodeJSON(w, values)
	}
	return unsupportedFormat(format, formatText, formatYAML, formatJSON)
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func mapNode(values map[string]string) *yaml.Node {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content, scalarNode(k), scalarNode(values[k]))
	}
	return node
}

func encodeYAML(w io.Writer, node *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
