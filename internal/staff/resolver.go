package staff

import "strings"

// ExtractID normalizes the two staff-identifier encodings seen on
// orders: a bare numeric id, or a composite resource path such as
// "gid://shopify/StaffMember/129870954875". It returns the trailing
// numeric segment and is idempotent; empty input yields empty output.
func ExtractID(identifier string) string {
	if identifier == "" {
		return ""
	}
	parts := strings.Split(identifier, "/")
	return parts[len(parts)-1]
}

// Resolver maps canonical staff ids to display names. The name table
// is injected at startup; ids missing from it get a synthesized name
// so a stale table never crashes the directory.
type Resolver struct {
	names map[string]string
}

func NewResolver(names map[string]string) *Resolver {
	if names == nil {
		names = map[string]string{}
	}
	return &Resolver{names: names}
}

// Name returns the configured display name for the id, or
// "Vendor <last4>" when the id is unknown.
func (r *Resolver) Name(id string) string {
	if r != nil {
		if name, ok := r.names[id]; ok && name != "" {
			return name
		}
	}
	suffix := id
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "Vendor " + suffix
}
