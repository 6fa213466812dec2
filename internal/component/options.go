package component

import (
	"encoding/json"
	"fmt"

	"github.com/pirakansa/appstack/internal/cli/shared"
)

// defaults returns the option defaults of k. Every kind installs by default.
func defaults(k Kind) map[string]any {
	d := map[string]any{"install": true}
	switch k {
	case KindWildfly:
		d["username"] = "admin"
		d["password"] = "password"
		d["debugPort"] = 8787
		d["portOffset"] = 0
		d["Xms"] = "64m"
		d["Xmx"] = "2048m"
		d["MetaspaceSize"] = "96M"
		d["MaxMetaspaceSize"] = "1024m"
		d["systemProperties"] = map[string]any{}
	case KindKeycloak:
		d["username"] = "admin"
		d["password"] = "password"
		d["portOffset"] = 1
		d["jsonFile"] = nil
		d["realm"] = "master"
	case KindKeycloakWildflyAdapter:
		d["secureDeployments"] = map[string]any{}
	case KindJDBCPostgreSQL:
	case KindPostgreSQL:
		d["username"] = "admin"
		d["password"] = "password"
		d["port"] = 5432
		d["db"] = "myDB"
	case KindMongoDB:
		d["port"] = 27017
		d["linuxDist"] = "ubuntu1804"
	case KindMongoDBTools:
		d["linuxDist"] = "ubuntu1804"
	default:
		panic(fmt.Sprintf("unknown component kind %d", int(k)))
	}
	return d
}

// declaredOrder is the presentation order of kind specific options.
func declaredOrder(k Kind) []string {
	switch k {
	case KindWildfly:
		return []string{"Xms", "Xmx", "MetaspaceSize", "MaxMetaspaceSize", "systemProperties"}
	case KindKeycloak:
		return []string{"realm", "jsonFile"}
	case KindKeycloakWildflyAdapter:
		return []string{"secureDeployments"}
	case KindJDBCPostgreSQL:
		return []string{"dataSource"}
	case KindPostgreSQL:
		return []string{"db"}
	case KindMongoDB, KindMongoDBTools:
		return []string{"linuxDist"}
	default:
		panic(fmt.Sprintf("unknown component kind %d", int(k)))
	}
}

// mergeOptions expands the version shorthand and lays raw over base.
func mergeOptions(id string, raw any, base map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(base))
	for k, v := range base {
		merged[k] = v
	}
	switch v := raw.(type) {
	case nil:
	case string:
		merged["version"] = v
	case map[string]any:
		for k, val := range v {
			merged[k] = val
		}
	default:
		return nil, &ValidationError{ID: id, Violations: []Violation{{
			Field:   id,
			Message: fmt.Sprintf("expected version string or options object, got %T", raw),
		}}}
	}
	return merged, nil
}

// buildOptions merges, validates and normalizes the options of one component.
func buildOptions(id string, k Kind, raw any, base map[string]any) (Options, error) {
	merged, err := mergeOptions(id, raw, base)
	if err != nil {
		return nil, err
	}
	if err := validate(id, k, merged); err != nil {
		return nil, err
	}
	if digest, ok := merged["digest"].(string); ok {
		if _, err := shared.ParseDigest(digest); err != nil {
			return nil, &ValidationError{ID: id, Violations: []Violation{{Field: id + ".digest", Message: err.Error()}}}
		}
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var opts Options
	if err := json.Unmarshal(b, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
