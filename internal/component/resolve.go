// Package component resolves the configured binaries into validated,
// cross-referenced descriptors.
package component

import (
	"fmt"
)

// Entry is one configured component in configuration order.
type Entry struct {
	ID  string
	Raw any
}

// UnknownComponentError reports a configuration key that names no kind.
type UnknownComponentError struct {
	ID string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown binary %q", e.ID)
}

// DependencyError reports a component configured without a component it needs.
type DependencyError struct {
	ID       string
	Requires string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s without %s: %q requires %q to be configured", e.ID, e.Requires, e.ID, e.Requires)
}

// Resolver builds descriptors from configuration entries.
type Resolver struct {
	env      Env
	raw      map[string]any
	built    map[string]*Descriptor
	building map[string]bool
}

// NewResolver returns a resolver whose actions run in env.
func NewResolver(env Env) *Resolver {
	return &Resolver{env: env}
}

// Resolve validates every entry and returns the resolved set. Entries are
// processed in order; dependencies are built on first use and shared.
func (r *Resolver) Resolve(entries []Entry) (*Set, error) {
	r.raw = make(map[string]any, len(entries))
	r.built = map[string]*Descriptor{}
	r.building = map[string]bool{}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := ParseKind(e.ID); !ok {
			return nil, &UnknownComponentError{ID: e.ID}
		}
		if _, dup := r.raw[e.ID]; dup {
			return nil, fmt.Errorf("binary %q is configured more than once", e.ID)
		}
		r.raw[e.ID] = e.Raw
		ids = append(ids, e.ID)
	}

	set := &Set{IDs: ids, byID: make(map[string]*Descriptor, len(ids))}
	for _, id := range ids {
		d, err := r.build(id)
		if err != nil {
			return nil, err
		}
		set.Descriptors = append(set.Descriptors, d)
		set.byID[id] = d
	}
	SortDescriptors(set.Descriptors)
	return set, nil
}

func (r *Resolver) build(id string) (*Descriptor, error) {
	if d, ok := r.built[id]; ok {
		return d, nil
	}
	if r.building[id] {
		return nil, fmt.Errorf("binary dependency cycle detected at %q", id)
	}
	kind, ok := ParseKind(id)
	if !ok {
		return nil, &UnknownComponentError{ID: id}
	}

	r.building[id] = true
	defer delete(r.building, id)

	d, err := r.construct(id, kind, r.raw[id])
	if err != nil {
		return nil, err
	}
	r.built[id] = d
	return d, nil
}

// require returns the descriptor of dependency, built on demand.
func (r *Resolver) require(id string, dependency Kind) (*Descriptor, error) {
	if _, ok := r.raw[dependency.ID()]; !ok {
		return nil, &DependencyError{ID: id, Requires: dependency.ID()}
	}
	return r.build(dependency.ID())
}

func (r *Resolver) construct(id string, k Kind, raw any) (*Descriptor, error) {
	opts, err := buildOptions(id, k, raw, defaults(k))
	if err != nil {
		return nil, err
	}

	switch k {
	case KindWildfly:
		return newWildfly(id, opts, r.env), nil
	case KindKeycloak:
		return newKeycloak(id, opts, r.env, false), nil
	case KindKeycloakWildflyAdapter:
		wildfly, err := r.require(id, KindWildfly)
		if err != nil {
			return nil, err
		}
		return newAdapter(id, opts, wildfly, r.env), nil
	case KindJDBCPostgreSQL:
		wildfly, err := r.require(id, KindWildfly)
		if err != nil {
			return nil, err
		}
		var postgres *Descriptor
		if opts.Object("dataSource") != nil {
			if postgres, err = r.require(id, KindPostgreSQL); err != nil {
				return nil, err
			}
		}
		return newJDBC(id, opts, wildfly, postgres, r.env), nil
	case KindPostgreSQL:
		return newPostgreSQL(id, opts, r.env), nil
	case KindMongoDB:
		return newMongoDB(id, opts, r.env), nil
	case KindMongoDBTools:
		mongo, err := r.require(id, KindMongoDB)
		if err != nil {
			return nil, err
		}
		return newMongoDBTools(id, opts, mongo, r.env), nil
	default:
		panic(fmt.Sprintf("unknown component kind %d", int(k)))
	}
}

// KeycloakExport resolves raw Keycloak options into a descriptor whose
// actions export the realm to jsonFile (default realm.json).
func KeycloakExport(raw any, env Env) (*Descriptor, error) {
	base := defaults(KindKeycloak)
	base["jsonFile"] = "realm.json"
	opts, err := buildOptions(KindKeycloak.ID(), KindKeycloak, raw, base)
	if err != nil {
		return nil, err
	}
	return newKeycloak(KindKeycloak.ID(), opts, env, true), nil
}
