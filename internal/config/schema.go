package config

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-rules/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-rules/internal/rules"
)

// GenerateSchema generates a JSON schema for the Config
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t.String() {
			case "optional.Option[time.Time]":
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date",
				}
			case "optional.Option[int]":
				return &jsonschema.Schema{
					Type: "integer",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			if t == reflect.TypeOf(rules.Kind("")) {
				kinds := make([]any, 0, len(rules.AllKinds))
				for _, kind := range rules.AllKinds {
					kinds = append(kinds, kind)
				}

				return &jsonschema.Schema{
					Type: "string",
					Enum: kinds,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&Config{})

	schema.Title = "argo-rules-config"
	schema.Description = "Configuration schema for a scheduled rule simulation"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the Config
func GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
