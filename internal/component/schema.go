package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Violation is one schema failure of a component's options.
type Violation struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation of one component.
type ValidationError struct {
	ID         string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("invalid options for %q: %s", e.ID, strings.Join(parts, "; "))
}

var (
	schemasOnce sync.Once
	schemas     map[Kind]*jsonschema.Schema
	schemasErr  error

	printer = message.NewPrinter(language.English)
)

var (
	stringType  = map[string]any{"type": "string"}
	boolType    = map[string]any{"type": "boolean"}
	portType    = map[string]any{"type": "integer", "minimum": 0, "maximum": 65535}
	scalarValue = map[string]any{"type": []any{"string", "number", "boolean"}}
)

// schemaDocument returns the JSON schema of the options of k.
func schemaDocument(k Kind) map[string]any {
	props := map[string]any{
		"version": stringType,
		"install": boolType,
		"digest":  map[string]any{"type": "string", "pattern": "^[A-Za-z0-9]+:[0-9A-Fa-f]+$"},
	}
	switch k {
	case KindWildfly:
		props["username"] = stringType
		props["password"] = stringType
		props["debugPort"] = portType
		props["portOffset"] = portType
		props["Xms"] = stringType
		props["Xmx"] = stringType
		props["MetaspaceSize"] = stringType
		props["MaxMetaspaceSize"] = stringType
		props["systemProperties"] = map[string]any{
			"type":                 "object",
			"additionalProperties": scalarValue,
		}
	case KindKeycloak:
		props["username"] = stringType
		props["password"] = stringType
		props["portOffset"] = portType
		props["jsonFile"] = map[string]any{"type": []any{"string", "null"}}
		props["realm"] = stringType
	case KindKeycloakWildflyAdapter:
		props["secureDeployments"] = map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":                 "object",
				"additionalProperties": scalarValue,
			},
		}
	case KindJDBCPostgreSQL:
		props["dataSource"] = map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"name", "jndiName"},
			"properties": map[string]any{
				"name":     stringType,
				"jndiName": stringType,
				"user":     stringType,
				"password": stringType,
			},
		}
	case KindPostgreSQL:
		props["username"] = stringType
		props["password"] = stringType
		props["port"] = portType
		props["db"] = stringType
	case KindMongoDB:
		props["port"] = portType
		props["linuxDist"] = stringType
	case KindMongoDBTools:
		props["linuxDist"] = stringType
	default:
		panic(fmt.Sprintf("unknown component kind %d", int(k)))
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                k.Name(),
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"version"},
		"properties":           props,
	}
}

func compiledSchemas() (map[Kind]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas()
	})
	return schemas, schemasErr
}

func compileSchemas() (map[Kind]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	for _, k := range Kinds {
		raw, err := json.Marshal(schemaDocument(k))
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema %s: %w", k.ID(), err)
		}
		if err := compiler.AddResource(schemaURL(k), doc); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", k.ID(), err)
		}
	}

	out := make(map[Kind]*jsonschema.Schema, len(Kinds))
	for _, k := range Kinds {
		s, err := compiler.Compile(schemaURL(k))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", k.ID(), err)
		}
		out[k] = s
	}
	return out, nil
}

func schemaURL(k Kind) string {
	return "https://appstack.local/schemas/" + k.ID() + ".json"
}

// validate checks the merged options of id against the schema of k.
func validate(id string, k Kind, merged map[string]any) error {
	all, err := compiledSchemas()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return &ValidationError{ID: id, Violations: []Violation{{Field: id, Message: err.Error()}}}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	err = all[k].Validate(instance)
	if err == nil {
		return nil
	}
	var valErr *jsonschema.ValidationError
	if !errors.As(err, &valErr) {
		return err
	}
	violations := collectViolations(id, valErr, nil)
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Field < violations[j].Field
	})
	return &ValidationError{ID: id, Violations: violations}
}

// collectViolations flattens the leaves of the validation error tree.
func collectViolations(id string, err *jsonschema.ValidationError, out []Violation) []Violation {
	if len(err.Causes) > 0 {
		for _, c := range err.Causes {
			out = collectViolations(id, c, out)
		}
		return out
	}
	field := id
	if len(err.InstanceLocation) > 0 {
		field += "." + strings.Join(err.InstanceLocation, ".")
	}
	return append(out, Violation{Field: field, Message: err.ErrorKind.LocalizedString(printer)})
}
