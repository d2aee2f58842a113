package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
)

// BatchKey creates a deterministic content hash for a batch of records and
// the strategy used to resolve it. Identical batches produce identical keys
// regardless of JSON key ordering.
func BatchKey(strategy models.ResolveStrategy, records []models.RawExtraction) (string, error) {
	raw, err := json.Marshal(map[string]any{
		"strategy": strategy,
		"records":  records,
	})
	if err != nil {
		return "", err
	}
	return GenerateFromJSON(raw)
}

// Generate creates a deterministic hash of arbitrary JSON-like data.
// The hash is a SHA256 of the canonicalized JSON.
func Generate(data any) string {
	hash := sha256.Sum256([]byte(canonicalize(data)))
	return hex.EncodeToString(hash[:])
}

// GenerateFromJSON creates a hash from raw JSON
func GenerateFromJSON(data json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	return Generate(v), nil
}

// canonicalize creates a deterministic string representation by sorting map
// keys and recursively processing nested structures
func canonicalize(data any) string {
	var sb strings.Builder
	writeCanonical(&sb, data)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, data any) {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			keyJSON, _ := json.Marshal(k)
			sb.Write(keyJSON)
			sb.WriteString(":")
			writeCanonical(sb, v[k])
		}
		sb.WriteString("}")
	case []any:
		sb.WriteString("[")
		for i, elem := range v {
			if i > 0 {
				sb.WriteString(",")
			}
			writeCanonical(sb, elem)
		}
		sb.WriteString("]")
	default:
		b, _ := json.Marshal(v)
		sb.Write(b)
	}
}
