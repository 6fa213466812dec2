package component

import "sort"

// namePriority is the display order of the well-known components.
var namePriority = []string{
	"Wildfly",
	"Keycloak",
	"Keycloak Wildfly Adapter",
	"MongoDB",
	"MongoDB DB Tools",
	"PostgreSQL",
	"JDBC PostgreSQL",
}

// optionPriority leads the presentation order of every component's options.
var optionPriority = []string{
	"version",
	"install",
	"port",
	"portOffset",
	"debugPort",
	"username",
	"password",
}

// priorityLess orders names in priority first, then the rest lexically.
func priorityLess(priority []string, a, b string) bool {
	ia, ib := indexOf(priority, a), indexOf(priority, b)
	switch {
	case ia >= 0 && ib >= 0:
		return ia < ib
	case ia >= 0:
		return true
	case ib >= 0:
		return false
	default:
		return a < b
	}
}

// NameLess orders component display names.
func NameLess(a, b string) bool {
	return priorityLess(namePriority, a, b)
}

// SortDescriptors sorts by display name, keeping input order among equals.
func SortDescriptors(ds []*Descriptor) {
	sort.SliceStable(ds, func(i, j int) bool {
		return NameLess(ds[i].Name, ds[j].Name)
	})
}

// OptionLess returns the option key order of a component with the given
// declared order.
func OptionLess(declared []string) func(a, b string) bool {
	priority := append(append([]string{}, optionPriority...), declared...)
	return func(a, b string) bool {
		return priorityLess(priority, a, b)
	}
}

// SortedKeys returns the option keys of d in presentation order.
func (d *Descriptor) SortedKeys() []string {
	keys := d.Options.Keys()
	less := OptionLess(d.DeclaredOrder)
	sort.SliceStable(keys, func(i, j int) bool {
		return less(keys[i], keys[j])
	})
	return keys
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
