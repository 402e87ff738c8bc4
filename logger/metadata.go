package logger

import (
	"bytes"
	"maps"

	"github.com/goccy/go-json"
)

const (
	metadataKey      = "metadata"
	metadataErrorKey = "metadata_error"
)

// normalizeMetadata turns an arbitrary JSON-compatible value into record
// fields. Objects become top-level fields; any other JSON value is kept whole
// under the "metadata" key. Numbers are kept as json.Number so integers of
// any size keep their exact value.
func normalizeMetadata(metadata any) map[string]any {
	switch m := metadata.(type) {
	case nil:
		return nil
	case map[string]any:
		return maps.Clone(m)
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return map[string]any{metadataErrorKey: err.Error()}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return map[string]any{metadataErrorKey: err.Error()}
	}

	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	default:
		return map[string]any{metadataKey: v}
	}
}
