// Package tree builds, validates and persists the content tree index.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/alnah/go-blogbook/internal/metadata"
)

// NodeType discriminates directory and file nodes.
type NodeType string

const (
	Directory NodeType = "directory"
	File      NodeType = "file"
)

// Structural keys are owned by the builder and never stored in Meta.
const (
	keyID        = "id"
	keyLabel     = "label"
	keyType      = "type"
	keyPath      = "path"
	keyDate      = "date"
	keyCreatedOn = "createdOn"
	keyChildren  = "children"
)

var reservedKeys = map[string]bool{
	keyID: true, keyLabel: true, keyType: true, keyPath: true,
	keyDate: true, keyCreatedOn: true, keyChildren: true,
}

// Directories have no path or timestamps of their own, so folder metadata
// may use those keys freely. id is structural for both kinds.
var dirReservedKeys = map[string]bool{
	keyID: true, keyLabel: true, keyType: true, keyChildren: true,
}

// reservedFor returns the keys a node of type t keeps out of Meta.
func reservedFor(t NodeType) map[string]bool {
	if t == Directory {
		return dirReservedKeys
	}
	return reservedKeys
}

// Node is one entry of the content tree. Directory nodes carry Children and
// folder metadata; file nodes carry Path, Date, CreatedOn and document metadata.
type Node struct {
	ID        string
	Label     string
	Type      NodeType
	Path      string
	Date      string
	CreatedOn string
	Meta      metadata.Metadata
	Children  []*Node
}

// IsDir reports whether n is a directory node.
func (n *Node) IsDir() bool { return n.Type == Directory }

// Title returns the title metadata, if any.
func (n *Node) Title() string { return n.Meta.String("title") }

// Tags returns the string members of the tags metadata.
func (n *Node) Tags() []string { return n.Meta.Strings("tags") }

// References returns the references metadata as decoded (strings or objects).
func (n *Node) References() []any {
	refs, _ := n.Meta["references"].([]any)
	return refs
}

// mergeMeta copies the keys of meta that n's type does not reserve.
func (n *Node) mergeMeta(meta metadata.Metadata) {
	reserved := reservedFor(n.Type)
	for k, v := range meta {
		if reserved[k] {
			continue
		}
		if n.Meta == nil {
			n.Meta = metadata.Metadata{}
		}
		n.Meta[k] = v
	}
}

// MarshalJSON writes a flat object: structural keys, then metadata keys in
// sorted order, then children. A directory's path, date and createdOn come
// from its folder metadata.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, v any) error {
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %q: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	structural := []struct {
		key string
		val string
	}{
		{keyID, n.ID},
		{keyLabel, n.Label},
		{keyType, string(n.Type)},
		{keyPath, n.Path},
		{keyDate, n.Date},
		{keyCreatedOn, n.CreatedOn},
	}
	reserved := reservedFor(n.Type)
	for _, f := range structural {
		if !reserved[f.key] || (f.val == "" && f.key != keyLabel && f.key != keyType) {
			continue
		}
		if err := write(f.key, f.val); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(n.Meta))
	for k := range n.Meta {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, n.Meta[k]); err != nil {
			return nil, err
		}
	}

	if n.Type == Directory || n.Children != nil {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		if err := write(keyChildren, children); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the flat object form. Unknown keys land in Meta.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = Node{}
	strField := func(key string, dst *string) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		return nil
	}

	var typ string
	if err := strField(keyType, &typ); err != nil {
		return err
	}
	n.Type = NodeType(typ)

	fields := map[string]*string{keyID: &n.ID, keyLabel: &n.Label}
	if n.Type != Directory {
		fields[keyPath] = &n.Path
		fields[keyDate] = &n.Date
		fields[keyCreatedOn] = &n.CreatedOn
	}
	for key, dst := range fields {
		if err := strField(key, dst); err != nil {
			return err
		}
	}

	if v, ok := raw[keyChildren]; ok {
		if err := json.Unmarshal(v, &n.Children); err != nil {
			return fmt.Errorf("decoding %q: %w", keyChildren, err)
		}
	}

	reserved := reservedFor(n.Type)
	for key, v := range raw {
		if reserved[key] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		if n.Meta == nil {
			n.Meta = metadata.Metadata{}
		}
		n.Meta[key] = val
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
