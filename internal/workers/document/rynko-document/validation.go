package rynkodocument

import (
	"rynko-workers/internal/common/validation"
	"rynko-workers/pkg/registry"
)

// GetInputSchema is the JSON schema of the job variables: the rynko node
// parameters at the top level and again per entry of "items".
func GetInputSchema() map[string]interface{} {
	return registry.JSONSchema(registry.Rynko(), registry.SchemaOptions{Items: true})
}

func validateVariables(variables map[string]interface{}) (*validation.ValidationResult, error) {
	return validation.ValidateDocument(GetInputSchema(), variables)
}
