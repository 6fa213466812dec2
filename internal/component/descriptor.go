package component

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pirakansa/appstack/internal/task"
)

// Script is a startup script written after installation.
type Script struct {
	Filename string
	Content  string
}

// Action is a named post-install step.
type Action struct {
	Name string
	Run  task.Func
}

// Descriptor is the resolved, validated form of one configured component.
// Descriptors are immutable once the Resolver returned them.
type Descriptor struct {
	ID      string
	Kind    Kind
	Name    string
	Options Options
	// Install is false when the component only feeds options to its dependents.
	Install bool

	DirectoryName   string
	DownloadURL     string
	ArchiveFilename string
	Digest          string
	IsArchive       bool
	// ExtractTarget overrides the working directory as extraction root.
	ExtractTarget string
	StartupScript *Script
	Actions       []Action
	DeclaredOrder []string
}

// Options holds validated option values decoded from JSON.
type Options map[string]any

// String returns the string value of key or "".
func (o Options) String(key string) string {
	return stringify(o[key])
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the numeric value of key truncated to int.
func (o Options) Int(key string) int {
	switch v := o[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// Bool returns the boolean value of key, or def when unset.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// Map returns the object value of key with values rendered as strings.
func (o Options) Map(key string) map[string]string {
	raw, ok := o[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = stringify(v)
	}
	return out
}

// Object returns the nested object value of key.
func (o Options) Object(key string) Options {
	raw, ok := o[key].(map[string]any)
	if !ok {
		return nil
	}
	return Options(raw)
}

// Keys returns the option names in lexical order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set is the resolved configuration.
type Set struct {
	// Descriptors is sorted by display priority.
	Descriptors []*Descriptor
	// IDs keeps the configuration order.
	IDs []string
	byID map[string]*Descriptor
}

// Get returns the descriptor configured under id.
func (s *Set) Get(id string) (*Descriptor, bool) {
	d, ok := s.byID[id]
	return d, ok
}

// Installable returns the descriptors that take part in installation.
func (s *Set) Installable() []*Descriptor {
	var out []*Descriptor
	for _, d := range s.Descriptors {
		if d.Install {
			out = append(out, d)
		}
	}
	return out
}

// Options returns the validated options of every configured component.
func (s *Set) Options() map[string]Options {
	out := make(map[string]Options, len(s.byID))
	for id, d := range s.byID {
		out[id] = d.Options
	}
	return out
}

func stripExtension(filename string) string {
	if i := strings.LastIndex(filename, "."); i > 0 {
		return filename[:i]
	}
	return filename
}
