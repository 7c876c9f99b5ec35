package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Definition is the value of one [extensions] entry: either a bare version
// string or a table with a version and an optional artifact allow-list.
type Definition struct {
	Version   string
	Artifacts []string

	// structured records which spelling was used, so a file round-trips
	// without turning "v1" into { version = "v1" }.
	structured bool
}

// Pinned returns the bare-string form.
func Pinned(version string) Definition {
	return Definition{Version: version}
}

// Configured returns the table form. An empty artifacts list means
// "extract everything".
func Configured(version string, artifacts []string) Definition {
	return Definition{Version: version, Artifacts: artifacts, structured: true}
}

// Structured reports whether the definition uses the table form.
func (d Definition) Structured() bool {
	return d.structured
}

// AllowList returns the artifact names to extract, or nil for all of them.
func (d Definition) AllowList() []string {
	if !d.structured || len(d.Artifacts) == 0 {
		return nil
	}
	return d.Artifacts
}

// UnmarshalTOML implements toml.Unmarshaler. The table form is tried
// first; anything else must be a string.
func (d *Definition) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case map[string]any:
		def := Definition{structured: true}
		for k, raw := range val {
			switch k {
			case "version":
				s, ok := raw.(string)
				if !ok {
					return fmt.Errorf("version must be a string, got %T", raw)
				}
				def.Version = s
			case "artifacts":
				list, ok := raw.([]any)
				if !ok {
					return fmt.Errorf("artifacts must be an array of strings, got %T", raw)
				}
				for _, item := range list {
					s, ok := item.(string)
					if !ok {
						return fmt.Errorf("artifacts must be an array of strings, got element %T", item)
					}
					def.Artifacts = append(def.Artifacts, s)
				}
			default:
				return fmt.Errorf("unknown key %q in extension definition", k)
			}
		}
		*d = def
		return nil
	case string:
		*d = Pinned(val)
		return nil
	default:
		return fmt.Errorf("extension definition must be a version string or a table, got %T", v)
	}
}

// MarshalTOML implements toml.Marshaler, producing a quoted string or an
// inline table.
func (d Definition) MarshalTOML() ([]byte, error) {
	if !d.structured {
		return quote(d.Version), nil
	}

	var b strings.Builder
	b.WriteString("{ ")
	b.Write([]byte("version = "))
	b.Write(quote(d.Version))
	if len(d.Artifacts) > 0 {
		b.WriteString(", artifacts = [")
		for i, a := range d.Artifacts {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Write(quote(a))
		}
		b.WriteString("]")
	}
	b.WriteString(" }")
	return []byte(b.String()), nil
}

// quote renders s as a TOML basic string. JSON string escapes are a
// subset of TOML's.
func quote(s string) []byte {
	out, _ := json.Marshal(s)
	return out
}
