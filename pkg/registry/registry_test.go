package registry

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{NodeRynko, NodeRynkoTrigger, CredentialRynko} {
		node, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, node.Name)
	}
	_, ok := Lookup("renderbase")
	assert.False(t, ok)
}

func TestRynkoOperations(t *testing.T) {
	var ops []string
	for _, p := range Rynko().Properties {
		if p.Name == "operation" {
			ops = p.OptionValues()
		}
	}
	assert.Equal(t, []string{"generate", "generatePdf", "generateExcel", "get", "search"}, ops)
}

func TestTriggerDefaults(t *testing.T) {
	trigger := RynkoTrigger()
	require.Len(t, trigger.Webhooks, 1)
	assert.Equal(t, "webhook", trigger.Webhooks[0].Path)
	assert.Equal(t, "POST", trigger.Webhooks[0].HTTPMethod)

	params := ApplyDefaults(trigger, nil)
	assert.Equal(t, "document.completed", params["event"])
}

func TestCredentialDescription(t *testing.T) {
	cred := RynkoAPI()
	assert.Equal(t, KindCredential, cred.Kind)
	assert.Equal(t, "/api/v1/auth/verify", cred.Test.URL)
	assert.Equal(t, "Bearer {{apiKey}}", cred.Authenticate.Headers["Authorization"])
}

func TestApplyDefaults_FollowsDisplayConditions(t *testing.T) {
	params := ApplyDefaults(Rynko(), map[string]interface{}{"operation": "search"})

	assert.Equal(t, "document", params["resource"])
	assert.Equal(t, "status", params["searchBy"])
	assert.Equal(t, "completed", params["searchStatus"])
	assert.NotContains(t, params, "searchFormat")
	assert.NotContains(t, params, "teamId")
	assert.NotContains(t, params, "format")
}

func TestApplyDefaults_GenerateUsesPDF(t *testing.T) {
	params := ApplyDefaults(Rynko(), nil)
	assert.Equal(t, "generate", params["operation"])
	assert.Equal(t, "pdf", params["format"])
}

func TestValidateParameters(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
		want   []string
	}{
		{
			name:   "valid generate",
			params: map[string]interface{}{"teamId": "t", "workspaceId": "w", "templateId": "x"},
		},
		{
			name:   "missing selections",
			params: map[string]interface{}{"operation": "generatePdf"},
			want:   []string{"teamId: required", "templateId: required", "workspaceId: required"},
		},
		{
			name:   "bad format",
			params: map[string]interface{}{"teamId": "t", "workspaceId": "w", "templateId": "x", "format": "docx"},
			want:   []string{"format: docx is not one of [pdf excel]"},
		},
		{
			name:   "bad search status",
			params: map[string]interface{}{"operation": "search", "searchStatus": "archived"},
			want:   []string{"searchStatus: archived is not one of [pending processing completed failed]"},
		},
		{
			name:   "get needs job id",
			params: map[string]interface{}{"operation": "get", "jobId": ""},
			want:   []string{"jobId: required"},
		},
		{
			name:   "unknown operation",
			params: map[string]interface{}{"operation": "delete"},
			want:   []string{"operation: delete is not one of [generate generatePdf generateExcel get search]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateParameters(Rynko(), tt.params))
		})
	}
}

func TestJSONSchema_Structural(t *testing.T) {
	schema := JSONSchema(Rynko(), SchemaOptions{Items: true})

	valid := map[string]interface{}{
		"operation":      "frobnicate",
		"continueOnFail": true,
		"items": []interface{}{
			map[string]interface{}{
				"templateId": "inv",
				"variables": map[string]interface{}{
					"variableValues": []interface{}{
						map[string]interface{}{"name": "total", "value": 12.5},
					},
				},
				"options": map[string]interface{}{"waitForCompletion": false},
			},
		},
	}
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(valid))
	require.NoError(t, err)
	assert.True(t, res.Valid(), "%v", res.Errors())

	invalid := map[string]interface{}{
		"items":   "not-an-array",
		"options": map[string]interface{}{"waitForCompletion": "yes"},
	}
	res, err = gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(invalid))
	require.NoError(t, err)
	assert.False(t, res.Valid())
	assert.Len(t, res.Errors(), 2)
}

func TestJSONSchema_Enums(t *testing.T) {
	schema := JSONSchema(Rynko(), SchemaOptions{Enums: true})
	props := schema["properties"].(map[string]interface{})

	assert.Equal(t, []interface{}{"pdf", "excel"}, props["format"].(map[string]interface{})["enum"])
	assert.NotContains(t, props["templateId"].(map[string]interface{}), "enum")
	assert.NotContains(t, props, "items")

	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(map[string]interface{}{"operation": "frobnicate"}))
	require.NoError(t, err)
	assert.False(t, res.Valid())
}

func TestWriteAndLoadNodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, All()))

	path := filepath.Join(t.TempDir(), "nodes.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	nodes, err := LoadNodes(path)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, Rynko().Properties[1].Options, nodes[0].Properties[1].Options)
	assert.Equal(t, "getWorkspaces", nodes[0].Properties[3].LoadOptions.Method)
}
