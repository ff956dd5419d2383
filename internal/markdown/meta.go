package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Meta holds the decoded key-value content of a front matter block.
type Meta map[string]interface{}

// Get returns the metadata value for the given key as a string.
// It returns an empty string if the key is missing or the Meta is nil.
func (m Meta) Get(name string) string {
	if m == nil {
		return ""
	}

	value, has := m[name]
	if !has {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprint(value)
}

// Decode parses raw meta text as a YAML mapping. Empty text decodes to an
// empty Meta.
func Decode(meta []byte) (Meta, error) {
	dict := make(Meta)

	if len(bytes.TrimSpace(meta)) == 0 {
		return dict, nil
	}

	if err := yaml.Unmarshal(meta, &dict); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding front matter"), ErrInvalidYAML)
	}

	return dict, nil
}

// ParseAssignments parses shell-quoted key=value words. Words without '='
// are ignored.
func ParseAssignments(input string) (Meta, error) {
	words, err := shlex.Split(input)
	if err != nil {
		return nil, errors.Wrap(err, "splitting assignments")
	}

	dict := make(Meta)

	for _, word := range words {
		idx := strings.IndexRune(word, '=')
		if idx > 0 && idx < len(word) {
			dict[word[:idx]] = word[idx+1:]
		}
	}

	return dict, nil
}

// SetValues updates top-level keys of a YAML mapping, keeping key order
// and comments. String values are read as YAML scalars, so "true" becomes a
// boolean and "'true'" a string. Missing keys are appended in sorted order.
func SetValues(meta []byte, values Meta) ([]byte, error) {
	var doc yaml.Node

	if err := yaml.Unmarshal(meta, &doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding front matter"), ErrInvalidYAML)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{ //nolint:exhaustruct
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}, //nolint:exhaustruct
		}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		setKey(root, key, scalarNode(values.Get(key)))
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2) //nolint:gomnd

	if err := enc.Encode(&doc); err != nil {
		return nil, errors.Wrap(err, "encoding front matter")
	}

	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding front matter")
	}

	return buf.Bytes(), nil
}

func setKey(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			value.HeadComment = mapping.Content[i+1].HeadComment
			value.LineComment = mapping.Content[i+1].LineComment
			mapping.Content[i+1] = value

			return
		}
	}

	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, //nolint:exhaustruct
		value,
	)
}

func scalarNode(raw string) *yaml.Node {
	var doc yaml.Node

	err := yaml.Unmarshal([]byte(raw), &doc)
	if err == nil && doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 && doc.Content[0].Kind == yaml.ScalarNode {
		return doc.Content[0]
	}

	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: raw} //nolint:exhaustruct
}

var (
	// ErrInvalidYAML marks front matter that is not valid YAML.
	ErrInvalidYAML = errors.New("invalid YAML")
	// ErrNotMapping is returned when front matter is valid YAML but not a mapping.
	ErrNotMapping = errors.New("front matter is not a mapping")
)
