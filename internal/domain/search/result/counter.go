package result

import (
	"strconv"
	"strings"
)

// Counter metadata separators: "id##1~~name##Shoes~~level##2".
const (
	MetadataSeparator = "~~"
	KeyValueSeparator = "##"
	DefaultLevel      = 1
)

// Counter is one reported bucket of an aggregation.
type Counter struct {
	key    string
	values map[string]string
	count  int64
	used   bool
}

// NewCounter parses key metadata and marks the counter used when its id is
// one of activeElements.
func NewCounter(key string, count int64, activeElements []string) Counter {
	values := parseMetadata(key)
	c := Counter{key: key, values: values, count: count}
	id := c.ID()
	for _, a := range activeElements {
		if a == id {
			c.used = true
			break
		}
	}
	return c
}

func parseMetadata(key string) map[string]string {
	if !strings.Contains(key, KeyValueSeparator) {
		return map[string]string{"id": key, "name": key}
	}
	values := make(map[string]string)
	for _, part := range strings.Split(key, MetadataSeparator) {
		k, v, ok := strings.Cut(part, KeyValueSeparator)
		if !ok {
			continue
		}
		values[k] = v
	}
	if _, ok := values["id"]; !ok {
		values["id"] = key
	}
	if _, ok := values["name"]; !ok {
		values["name"] = values["id"]
	}
	return values
}

// Key returns the raw bucket key.
func (c Counter) Key() string { return c.key }

// ID returns the counter id.
func (c Counter) ID() string { return c.values["id"] }

// Name returns the display name.
func (c Counter) Name() string { return c.values["name"] }

// Level returns the hierarchy level, DefaultLevel when absent.
func (c Counter) Level() int {
	if l, err := strconv.Atoi(c.values["level"]); err == nil {
		return l
	}
	return DefaultLevel
}

// Values returns the parsed key metadata.
func (c Counter) Values() map[string]string { return c.values }

// Count returns the document count.
func (c Counter) Count() int64 { return c.count }

// Used reports whether the counter is one of the active filter values.
func (c Counter) Used() bool { return c.used }
