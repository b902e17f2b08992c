package confwriter

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vigilmon/vigil/pkg/types"
)

// EmitObject writes one object declaration in the configuration language:
//
//	object <Type> "<name>" [ignore_on_error] {
//		import "<template>"
//		<attr> = <value>
//	}
//
// followed by a blank line, the boundary the compiler recognizes between
// objects. Attribute keys are emitted in sorted order so the output is
// deterministic.
func EmitObject(w io.Writer, typeName, name string, ignoreOnError bool, templates []string, attrs types.Attributes) error {
	header := fmt.Sprintf("object %s %s", typeName, strconv.Quote(name))
	if ignoreOnError {
		header += " ignore_on_error"
	}

	if _, err := fmt.Fprintf(w, "%s {\n", header); err != nil {
		return err
	}

	for _, tmpl := range templates {
		if _, err := fmt.Fprintf(w, "\timport %s\n", strconv.Quote(tmpl)); err != nil {
			return err
		}
	}

	if err := emitAttributes(w, attrs, 1); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "}\n"); err != nil {
		return err
	}

	return nil
}

func emitAttributes(w io.Writer, attrs types.Attributes, depth int) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := ""
	for i := 0; i < depth; i++ {
		indent += "\t"
	}

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s%s = ", indent, emitKey(k)); err != nil {
			return err
		}
		if err := EmitValue(w, attrs[k], depth); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	return nil
}

// EmitValue writes a single value literal
func EmitValue(w io.Writer, value any, depth int) error {
	switch v := value.(type) {
	case nil:
		_, err := io.WriteString(w, "null")
		return err
	case bool:
		_, err := io.WriteString(w, strconv.FormatBool(v))
		return err
	case string:
		_, err := io.WriteString(w, strconv.Quote(v))
		return err
	case int:
		_, err := io.WriteString(w, strconv.Itoa(v))
		return err
	case int64:
		_, err := io.WriteString(w, strconv.FormatInt(v, 10))
		return err
	case float64:
		_, err := io.WriteString(w, strconv.FormatFloat(v, 'g', -1, 64))
		return err
	case []any:
		if _, err := io.WriteString(w, "[ "); err != nil {
			return err
		}
		for i, el := range v {
			if i > 0 {
				if _, err := io.WriteString(w, ", "); err != nil {
					return err
				}
			}
			// Array elements stay on the array's own line, so nested
			// dictionaries use the inline form.
			if err := emitInlineValue(w, el); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, " ]")
		return err
	case []string:
		arr := make([]any, len(v))
		for i, s := range v {
			arr[i] = s
		}
		return EmitValue(w, arr, depth)
	case map[string]any:
		if _, err := io.WriteString(w, "{\n"); err != nil {
			return err
		}
		if err := emitAttributes(w, types.Attributes(v), depth+1); err != nil {
			return err
		}
		indent := ""
		for i := 0; i < depth; i++ {
			indent += "\t"
		}
		_, err := fmt.Fprintf(w, "%s}", indent)
		return err
	case types.Attributes:
		return EmitValue(w, map[string]any(v), depth)
	default:
		return fmt.Errorf("cannot serialize value of type %T", value)
	}
}

// emitInlineValue writes a value without line breaks: dictionaries become
// "{ key = value, ... }". The compiler parses values line by line, so
// anything nested inside an array must not span lines.
func emitInlineValue(w io.Writer, value any) error {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			_, err := io.WriteString(w, "{ }")
			return err
		}

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		if _, err := io.WriteString(w, "{ "); err != nil {
			return err
		}
		for i, k := range keys {
			if i > 0 {
				if _, err := io.WriteString(w, ", "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%s = ", emitKey(k)); err != nil {
				return err
			}
			if err := emitInlineValue(w, v[k]); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, " }")
		return err
	case types.Attributes:
		return emitInlineValue(w, map[string]any(v))
	default:
		return EmitValue(w, value, 0)
	}
}

// emitKey quotes a key unless it is a plain identifier (dots allowed, since
// dotted keys address nested fields).
func emitKey(key string) string {
	if isIdentifier(key) {
		return key
	}
	return strconv.Quote(key)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		case r == '.' && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return true
}
