package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// sectionDecoder replaces one Config section with the decoded YAML node.
type sectionDecoder func(node *yaml.Node) error

// replaceWith decodes into a fresh T and then assigns it, so fields the
// overlay leaves out fall back to zero instead of keeping the base value.
func replaceWith[T any](dst *T) sectionDecoder {
	return func(node *yaml.Node) error {
		var v T
		if err := node.Decode(&v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// sections maps each top-level YAML key to the field of target it replaces.
// Keys missing here are ignored by ShallowMergeYAML.
func sections(target *Config) map[string]sectionDecoder {
	return map[string]sectionDecoder{
		"version": replaceWith(&target.Version),
		"style":   replaceWith(&target.Style),
		"render":  replaceWith(&target.Render),
		"output":  replaceWith(&target.Output),
		"logging": replaceWith(&target.Logging),
		"server":  replaceWith(&target.Server),
		"cache":   replaceWith(&target.Cache),
	}
}

// ShallowMergeYAML applies the YAML file at overlayPath onto target one
// section at a time. A section present in the overlay replaces the whole
// section in target; absent sections are untouched.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	decoders := sections(target)
	for key, node := range overlay {
		decode, ok := decoders[key]
		if !ok {
			continue
		}
		if err = decode(&node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}
