package runtimeconfig

import (
	"sort"
	"strings"
	"time"

	"github.com/vigilmon/vigil/pkg/confwriter"
	"github.com/vigilmon/vigil/pkg/types"
)

// CreateObjectConfig serializes one object into its configuration-language
// representation. Every attribute key is validated against the type's field
// metadata before any text is emitted: the prefix up to the first '.' must
// resolve to a known, externally settable field, and the reserved key "name"
// may not be set by the caller at all (it is derived from the full name).
func CreateObjectConfig(t *types.Type, fullName string, ignoreOnError bool, templates []string, attrs types.Attributes) (string, error) {
	var nameParts types.Attributes
	name := fullName

	if composer, ok := t.Composer(); ok {
		parts, err := composer.ParseName(fullName)
		if err != nil {
			return "", &ValidationError{Attribute: fullName, Reason: "invalid object name"}
		}
		nameParts = parts
		name, _ = parts["name"].(string)
	}

	// Validate all keys before emitting anything; partial validation
	// success is not acceptable.
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		prefix, _, _ := strings.Cut(key, ".")

		fid := t.FieldID(prefix)
		if fid < 0 {
			return "", &ValidationError{Attribute: key, Reason: "invalid attribute specified"}
		}

		field, _ := t.FieldInfo(fid)
		if !field.Flags.Has(types.FieldConfig) || key == "name" {
			return "", &ValidationError{Attribute: key, Reason: "attribute is marked for internal use only and may not be set"}
		}
	}

	allAttrs := attrs.Copy()
	for k, v := range nameParts {
		allAttrs[k] = v
	}
	delete(allAttrs, "name")

	// Update the version for config sync
	allAttrs["version"] = float64(time.Now().UnixNano()) / 1e9

	var b strings.Builder
	if err := confwriter.EmitObject(&b, t.Name(), name, ignoreOnError, templates, allAttrs); err != nil {
		return "", err
	}
	b.WriteString("\n")

	return b.String(), nil
}
