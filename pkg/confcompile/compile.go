package confcompile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vigilmon/vigil/pkg/types"
)

// CompileError reports a syntax problem in a configuration unit
type CompileError struct {
	Path    string
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
}

// Unit is a compiled configuration unit: the parsed object declarations of
// one source text, bound to a config package. Evaluating a unit produces
// candidate config items in an activation context; nothing is registered
// until the items are committed.
type Unit struct {
	sourcePath   string
	contextLabel string
	pkg          string
	reg          *types.Registry
	decls        []*objectDecl
}

type objectDecl struct {
	line          int
	typeName      string
	name          string
	ignoreOnError bool
	templates     []string
	attrs         types.Attributes
}

// CompileText parses source text into a unit. The path is recorded as the
// unit's debug-info source; the package label scopes every produced item.
func CompileText(path, text, contextLabel, pkg string, reg *types.Registry) (*Unit, error) {
	p := &parser{
		path:  path,
		lines: strings.Split(text, "\n"),
	}

	var decls []*objectDecl
	for {
		decl, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		if decl == nil {
			break
		}
		decls = append(decls, decl)
	}

	return &Unit{
		sourcePath:   path,
		contextLabel: contextLabel,
		pkg:          pkg,
		reg:          reg,
		decls:        decls,
	}, nil
}

// Evaluate produces the unit's candidate config items into the activation
// context. Unknown object types surface here, not at parse time.
func (u *Unit) Evaluate(ctx *ActivationContext) error {
	for _, decl := range u.decls {
		typ, ok := u.reg.Lookup(decl.typeName)
		if !ok {
			return &CompileError{
				Path:    u.sourcePath,
				Line:    decl.line,
				Message: fmt.Sprintf("unknown object type '%s'", decl.typeName),
			}
		}

		ctx.add(&ConfigItem{
			typ:           typ,
			name:          decl.name,
			templates:     decl.templates,
			attrs:         decl.attrs.Copy(),
			ignoreOnError: decl.ignoreOnError,
			pkg:           u.pkg,
			sourcePath:    u.sourcePath,
		})
	}

	return nil
}

type parser struct {
	path  string
	lines []string
	pos   int
}

func (p *parser) errf(line int, format string, args ...any) error {
	return &CompileError{Path: p.path, Line: line, Message: fmt.Sprintf(format, args...)}
}

// next returns the next non-blank line, trimmed, or false at end of input
func (p *parser) next() (string, int, bool) {
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		p.pos++
		if line != "" {
			return line, p.pos, true
		}
	}
	return "", p.pos, false
}

func (p *parser) parseObject() (*objectDecl, error) {
	header, lineNo, ok := p.next()
	if !ok {
		return nil, nil
	}

	rest, found := strings.CutPrefix(header, "object ")
	if !found {
		return nil, p.errf(lineNo, "expected object declaration, got %q", header)
	}
	if !strings.HasSuffix(rest, "{") {
		return nil, p.errf(lineNo, "expected '{' at end of object header")
	}
	rest = strings.TrimSpace(strings.TrimSuffix(rest, "{"))

	typeName, rest, found := strings.Cut(rest, " ")
	if !found {
		return nil, p.errf(lineNo, "expected object name after type")
	}
	rest = strings.TrimSpace(rest)

	decl := &objectDecl{
		line:     lineNo,
		typeName: typeName,
		attrs:    make(types.Attributes),
	}

	if s, ok := strings.CutSuffix(rest, " ignore_on_error"); ok {
		decl.ignoreOnError = true
		rest = s
	}

	name, err := strconv.Unquote(rest)
	if err != nil {
		return nil, p.errf(lineNo, "invalid object name %s", rest)
	}
	decl.name = name

	if err := p.parseBody(decl); err != nil {
		return nil, err
	}

	return decl, nil
}

func (p *parser) parseBody(decl *objectDecl) error {
	for {
		line, lineNo, ok := p.next()
		if !ok {
			return p.errf(lineNo, "unexpected end of input inside object body")
		}
		if line == "}" {
			return nil
		}

		if quoted, found := strings.CutPrefix(line, "import "); found {
			tmpl, err := strconv.Unquote(strings.TrimSpace(quoted))
			if err != nil {
				return p.errf(lineNo, "invalid template reference %s", quoted)
			}
			decl.templates = append(decl.templates, tmpl)
			continue
		}

		key, value, err := p.parseAssignment(line, lineNo)
		if err != nil {
			return err
		}
		decl.attrs[key] = value
	}
}

func (p *parser) parseAssignment(line string, lineNo int) (string, any, error) {
	rawKey, rawValue, found := cutAssign(line)
	if !found {
		return "", nil, p.errf(lineNo, "expected assignment, got %q", line)
	}

	key, err := parseKey(strings.TrimSpace(rawKey))
	if err != nil {
		return "", nil, p.errf(lineNo, "%v", err)
	}

	value, err := p.parseValue(strings.TrimSpace(rawValue), lineNo)
	if err != nil {
		return "", nil, err
	}

	return key, value, nil
}

func (p *parser) parseValue(raw string, lineNo int) (any, error) {
	switch {
	case raw == "{":
		return p.parseDict()
	case strings.HasPrefix(raw, "{"):
		return p.parseInlineDict(raw, lineNo)
	case raw == "null":
		return nil, nil
	case raw == "true":
		return true, nil
	case raw == "false":
		return false, nil
	case strings.HasPrefix(raw, "\""):
		s, err := strconv.Unquote(raw)
		if err != nil {
			return nil, p.errf(lineNo, "invalid string literal %s", raw)
		}
		return s, nil
	case strings.HasPrefix(raw, "["):
		return p.parseArray(raw, lineNo)
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, p.errf(lineNo, "invalid value %q", raw)
		}
		return f, nil
	}
}

func (p *parser) parseDict() (map[string]any, error) {
	dict := make(map[string]any)
	for {
		line, lineNo, ok := p.next()
		if !ok {
			return nil, p.errf(lineNo, "unexpected end of input inside dictionary")
		}
		if line == "}" {
			return dict, nil
		}

		key, value, err := p.parseAssignment(line, lineNo)
		if err != nil {
			return nil, err
		}
		dict[key] = value
	}
}

// parseInlineDict parses the single-line dictionary form "{ k = v, ... }",
// the shape the writer emits for dictionaries nested inside arrays.
func (p *parser) parseInlineDict(raw string, lineNo int) (map[string]any, error) {
	if !strings.HasSuffix(raw, "}") {
		return nil, p.errf(lineNo, "unterminated dictionary")
	}

	dict := make(map[string]any)
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return dict, nil
	}

	for _, part := range splitTopLevel(inner) {
		key, value, err := p.parseAssignment(strings.TrimSpace(part), lineNo)
		if err != nil {
			return nil, err
		}
		dict[key] = value
	}
	return dict, nil
}

func (p *parser) parseArray(raw string, lineNo int) ([]any, error) {
	if !strings.HasSuffix(raw, "]") {
		return nil, p.errf(lineNo, "unterminated array")
	}
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return []any{}, nil
	}

	var out []any
	for _, el := range splitTopLevel(inner) {
		value, err := p.parseValue(strings.TrimSpace(el), lineNo)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// splitTopLevel splits on commas that are not inside string literals or
// nested brackets/braces.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// cutAssign splits an assignment at the first '=' outside a string literal,
// so quoted keys containing '=' survive the cut.
func cutAssign(line string) (string, string, bool) {
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '=':
			return line[:i], line[i+1:], true
		}
	}
	return line, "", false
}

func parseKey(raw string) (string, error) {
	if strings.HasPrefix(raw, "\"") {
		key, err := strconv.Unquote(raw)
		if err != nil {
			return "", fmt.Errorf("invalid key %s", raw)
		}
		return key, nil
	}
	if raw == "" {
		return "", fmt.Errorf("empty key")
	}
	return raw, nil
}
