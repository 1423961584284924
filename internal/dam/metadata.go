package dam

import (
	"fmt"
	"strings"
)

// DefaultNamespace groups metadata keys that carry no namespace prefix.
const DefaultNamespace = "_default"

// reservedPrefix marks repository-internal system properties.
const reservedPrefix = "jcr:"

// keptReservedKeys are the jcr: properties retained despite the reserved
// prefix: the two display keys and the two structural type keys.
var keptReservedKeys = map[string]struct{}{
	"jcr:title":       {},
	"jcr:description": {},
	"jcr:primaryType": {},
	"jcr:mixinTypes":  {},
}

// NormalizeMetadataSchema maps a metadata node payload onto the canonical
// schema: system keys are dropped (except the kept display and structural
// keys), and every surviving key lands both in Properties and in exactly
// one namespace bucket, keyed by the substring before its first colon.
// Unknown keys are preserved, never dropped; only a non-object payload is
// an error.
func NormalizeMetadataSchema(payload interface{}) (MetadataSchema, error) {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return MetadataSchema{}, &ShapeError{Got: fmt.Sprintf("%T", payload)}
	}

	schema := MetadataSchema{
		Properties: make(map[string]interface{}, len(obj)),
		Namespaces: make(map[string]map[string]interface{}),
	}

	for key, value := range obj {
		if strings.HasPrefix(key, reservedPrefix) {
			if _, kept := keptReservedKeys[key]; !kept {
				continue
			}
		}
		schema.Properties[key] = value

		ns := DefaultNamespace
		if i := strings.Index(key, ":"); i >= 0 {
			ns = key[:i]
		}
		bucket, ok := schema.Namespaces[ns]
		if !ok {
			bucket = make(map[string]interface{})
			schema.Namespaces[ns] = bucket
		}
		bucket[key] = value
	}

	return schema, nil
}
