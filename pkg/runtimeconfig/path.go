package runtimeconfig

import (
	"crypto/sha1"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vigilmon/vigil/pkg/confpkg"
	"github.com/vigilmon/vigil/pkg/types"
)

const (
	// maxFileNameLen is the portable filename length bound
	maxFileNameLen = 255

	// truncatedNameLen + "..." + 40 hex chars of SHA-1 is the hashed
	// fallback filename for the truncation-exempt types.
	truncatedNameLen = 80
	hashedNameLen    = truncatedNameLen + 3 + sha1.Size*2
)

// escapeSet lists the filesystem-hostile characters replaced by EscapeName
const escapeSet = `<>:"/\|?*`

// EscapeName makes an object name safe for use as a file name. The escaping
// replaces hostile characters with %XX hex codes and is reversible through
// UnescapeName.
func EscapeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '%' || c < 0x20 || c > 0x7e || strings.IndexByte(escapeSet, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeName reverses EscapeName
func UnescapeName(escaped string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(escaped); i++ {
		c := escaped[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(escaped) {
			return "", fmt.Errorf("truncated escape sequence in %q", escaped)
		}
		var decoded byte
		if _, err := fmt.Sscanf(escaped[i+1:i+3], "%02X", &decoded); err != nil {
			return "", fmt.Errorf("invalid escape sequence in %q: %w", escaped, err)
		}
		b.WriteByte(decoded)
		i += 2
	}
	return b.String(), nil
}

// truncateUsingHash shortens an overlong name to a fixed-length form that
// stays unique: the first 80 bytes, "...", and the 40-hex-char SHA-1 of the
// full name. Names already short enough are returned unchanged.
func truncateUsingHash(name string) string {
	if len(name) <= hashedNameLen {
		return name
	}
	return fmt.Sprintf("%s...%x", name[:truncatedNameLen], sha1.Sum([]byte(name)))
}

// truncationExempt reports whether a type uses the hashed fallback for
// overlong names. Only acknowledgement comments and scheduled downtimes
// qualify: their composite names routinely blow the filename bound, they
// cannot reasonably be renamed, and the cost of not replicating them
// cluster-wide is bounded. Every other type fails path derivation instead,
// because peers running older logic would interpret a truncated path
// differently.
func truncationExempt(t *types.Type) bool {
	return t.Name() == "Comment" || t.Name() == "Downtime"
}

// ComputeNewObjectConfigPath derives the canonical on-disk path for a new
// object of the given type. A failed package repair propagates from here.
func (m *Manager) ComputeNewObjectConfigPath(t *types.Type, fullName string) (string, error) {
	configDir, err := m.packages.GetConfigDir(confpkg.APIPackage)
	if err != nil {
		return "", err
	}

	prefix := filepath.Join(configDir, "conf.d", strings.ToLower(t.PluralName()))
	escaped := EscapeName(fullName)

	if truncationExempt(t) {
		return filepath.Join(prefix, truncateUsingHash(escaped)+".conf"), nil
	}

	if len(escaped)+len(".conf") > maxFileNameLen {
		return "", &PathError{
			Type:     t.Name(),
			FullName: fullName,
			Reason:   fmt.Sprintf("escaped name exceeds %d bytes", maxFileNameLen),
		}
	}

	return filepath.Join(prefix, escaped+".conf"), nil
}
