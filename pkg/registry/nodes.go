package registry

// Node and credential names.
const (
	NodeRynko        = "rynko"
	NodeRynkoTrigger = "rynkoTrigger"
	CredentialRynko  = "rynkoApi"

	// DocumentTaskType is the Zeebe job type served by the rynko node.
	DocumentTaskType = "rynko.document"
)

// Resources and operations of the rynko node.
const (
	ResourceDocument = "document"

	OperationGenerate      = "generate"
	OperationGeneratePDF   = "generatePdf"
	OperationGenerateExcel = "generateExcel"
	OperationGet           = "get"
	OperationSearch        = "search"
)

// Load options methods.
const (
	LoadTeams          = "getTeams"
	LoadWorkspaces     = "getWorkspaces"
	LoadTemplates      = "getTemplates"
	LoadPDFTemplates   = "getPdfTemplates"
	LoadExcelTemplates = "getExcelTemplates"
)

var generateOperations = []string{OperationGenerate, OperationGeneratePDF, OperationGenerateExcel}

func show(resourceOps []string, extra map[string][]string) *DisplayOptions {
	s := map[string][]string{
		"resource":  {ResourceDocument},
		"operation": resourceOps,
	}
	for k, v := range extra {
		s[k] = v
	}
	return &DisplayOptions{Show: s}
}

var formatOptions = []Option{
	{Name: "PDF", Value: "pdf"},
	{Name: "Excel", Value: "excel"},
}

// Rynko describes the document action node.
func Rynko() NodeDescription {
	return NodeDescription{
		Name:        NodeRynko,
		DisplayName: "Rynko",
		Description: "Generate PDF and Excel documents from templates",
		Kind:        KindAction,
		Version:     1,
		Group:       []string{"transform"},
		Icon:        "file:rynko.svg",
		Subtitle:    `={{$parameter["operation"] + ": " + $parameter["resource"]}}`,
		TaskType:    DocumentTaskType,
		Credentials: []CredentialRef{{Name: CredentialRynko, Required: true}},
		Properties: []Property{
			{
				Name:             "resource",
				DisplayName:      "Resource",
				Type:             TypeOptions,
				NoDataExpression: true,
				Options:          []Option{{Name: "Document", Value: ResourceDocument}},
				Default:          ResourceDocument,
			},
			{
				Name:             "operation",
				DisplayName:      "Operation",
				Type:             TypeOptions,
				NoDataExpression: true,
				DisplayOptions:   &DisplayOptions{Show: map[string][]string{"resource": {ResourceDocument}}},
				Options: []Option{
					{Name: "Generate", Value: OperationGenerate, Description: "Generate a document from a template", Action: "Generate a document"},
					{Name: "Generate PDF", Value: OperationGeneratePDF, Description: "Generate a PDF document from a template", Action: "Generate a PDF"},
					{Name: "Generate Excel", Value: OperationGenerateExcel, Description: "Generate an Excel document from a template", Action: "Generate an Excel file"},
					{Name: "Get", Value: OperationGet, Description: "Get a document job by ID", Action: "Get a document job"},
					{Name: "Search", Value: OperationSearch, Description: "Search for document jobs", Action: "Search document jobs"},
				},
				Default: OperationGenerate,
			},
			{
				Name:           "teamId",
				DisplayName:    "Project",
				Type:           TypeOptions,
				LoadOptions:    &LoadOptions{Method: LoadTeams},
				Required:       true,
				DisplayOptions: show(generateOperations, nil),
				Default:        "",
				Description:    "Select a project from your Rynko account",
			},
			{
				Name:           "workspaceId",
				DisplayName:    "Environment",
				Type:           TypeOptions,
				LoadOptions:    &LoadOptions{Method: LoadWorkspaces, DependsOn: []string{"teamId"}},
				Required:       true,
				DisplayOptions: show(generateOperations, nil),
				Default:        "",
				Description:    "Select an environment within the selected project",
			},
			{
				Name:           "templateId",
				DisplayName:    "Template",
				Type:           TypeOptions,
				LoadOptions:    &LoadOptions{Method: LoadTemplates, DependsOn: []string{"workspaceId"}},
				Required:       true,
				DisplayOptions: show([]string{OperationGenerate}, nil),
				Default:        "",
				Description:    "The template to use for document generation",
			},
			{
				Name:           "templateId",
				DisplayName:    "PDF Template",
				Type:           TypeOptions,
				LoadOptions:    &LoadOptions{Method: LoadPDFTemplates, DependsOn: []string{"workspaceId"}},
				Required:       true,
				DisplayOptions: show([]string{OperationGeneratePDF}, nil),
				Default:        "",
				Description:    "The PDF template to use",
			},
			{
				Name:           "templateId",
				DisplayName:    "Excel Template",
				Type:           TypeOptions,
				LoadOptions:    &LoadOptions{Method: LoadExcelTemplates, DependsOn: []string{"workspaceId"}},
				Required:       true,
				DisplayOptions: show([]string{OperationGenerateExcel}, nil),
				Default:        "",
				Description:    "The Excel template to use",
			},
			{
				Name:           "format",
				DisplayName:    "Output Format",
				Type:           TypeOptions,
				DisplayOptions: show([]string{OperationGenerate}, nil),
				Options:        formatOptions,
				Default:        "pdf",
				Description:    "The output format for the generated document",
			},
			{
				Name:           "jobId",
				DisplayName:    "Job ID",
				Type:           TypeString,
				Required:       true,
				DisplayOptions: show([]string{OperationGet}, nil),
				Default:        "",
				Description:    "The ID of the document job to retrieve",
			},
			{
				Name:           "searchBy",
				DisplayName:    "Search By",
				Type:           TypeOptions,
				DisplayOptions: show([]string{OperationSearch}, nil),
				Options: []Option{
					{Name: "Status", Value: "status"},
					{Name: "Template", Value: "templateId"},
					{Name: "Format", Value: "format"},
				},
				Default: "status",
			},
			{
				Name:           "searchStatus",
				DisplayName:    "Status",
				Type:           TypeOptions,
				DisplayOptions: show([]string{OperationSearch}, map[string][]string{"searchBy": {"status"}}),
				Options: []Option{
					{Name: "Pending", Value: "pending"},
					{Name: "Processing", Value: "processing"},
					{Name: "Completed", Value: "completed"},
					{Name: "Failed", Value: "failed"},
				},
				Default: "completed",
			},
			{
				Name:           "searchTemplateId",
				DisplayName:    "Template",
				Type:           TypeOptions,
				LoadOptions:    &LoadOptions{Method: LoadTemplates},
				DisplayOptions: show([]string{OperationSearch}, map[string][]string{"searchBy": {"templateId"}}),
				Default:        "",
			},
			{
				Name:           "searchFormat",
				DisplayName:    "Format",
				Type:           TypeOptions,
				DisplayOptions: show([]string{OperationSearch}, map[string][]string{"searchBy": {"format"}}),
				Options:        formatOptions,
				Default:        "pdf",
			},
			{
				Name:           "options",
				DisplayName:    "Options",
				Type:           TypeCollection,
				Placeholder:    "Add Option",
				Default:        map[string]interface{}{},
				DisplayOptions: show(generateOperations, nil),
				Collection: []Property{
					{Name: "fileName", DisplayName: "File Name", Type: TypeString, Default: "", Description: "Custom file name (without extension)"},
					{Name: "waitForCompletion", DisplayName: "Wait for Completion", Type: TypeBoolean, Default: true, Description: "Whether to wait for the document to be generated before continuing"},
				},
			},
			{
				Name:           "variables",
				DisplayName:    "Template Variables",
				Type:           TypeFixedCollection,
				MultipleValues: true,
				DisplayOptions: show(generateOperations, nil),
				Default:        map[string]interface{}{},
				Placeholder:    "Add Variable",
				Groups: []PropertyGroup{
					{
						Name:        "variableValues",
						DisplayName: "Variable",
						Values: []Property{
							{Name: "name", DisplayName: "Name", Type: TypeString, Default: ""},
							{Name: "value", DisplayName: "Value", Type: TypeString, Default: ""},
						},
					},
				},
			},
		},
	}
}

// RynkoTrigger describes the webhook trigger node.
func RynkoTrigger() NodeDescription {
	return NodeDescription{
		Name:        NodeRynkoTrigger,
		DisplayName: "Rynko Trigger",
		Description: "Starts the workflow when Rynko events occur",
		Kind:        KindTrigger,
		Version:     1,
		Group:       []string{"trigger"},
		Icon:        "file:rynko.svg",
		Subtitle:    `={{$parameter["event"]}}`,
		Credentials: []CredentialRef{{Name: CredentialRynko, Required: true}},
		Webhooks: []WebhookDescription{
			{Name: "default", HTTPMethod: "POST", ResponseMode: "onReceived", Path: "webhook"},
		},
		Properties: []Property{
			{
				Name:             "event",
				DisplayName:      "Event",
				Type:             TypeOptions,
				NoDataExpression: true,
				Required:         true,
				Default:          "document.completed",
				Options: []Option{
					{Name: "Document Completed", Value: "document.completed", Description: "Triggers when a document is successfully generated"},
					{Name: "Document Failed", Value: "document.failed", Description: "Triggers when a document generation fails"},
					{Name: "Batch Completed", Value: "batch.completed", Description: "Triggers when a batch of documents is finished generating"},
				},
			},
		},
	}
}

// RynkoAPI describes the API key credential.
func RynkoAPI() NodeDescription {
	return NodeDescription{
		Name:             CredentialRynko,
		DisplayName:      "Rynko API",
		Kind:             KindCredential,
		Version:          1,
		DocumentationURL: "https://docs.rynko.dev/integrations/no-code#n8n-integration",
		Properties: []Property{
			{
				Name:        "apiKey",
				DisplayName: "API Key",
				Type:        TypeString,
				Password:    true,
				Default:     "",
				Required:    true,
				Description: "Your Rynko API key. Generate one from Settings, API Keys in your Rynko dashboard.",
			},
			{
				Name:        "baseUrl",
				DisplayName: "API Base URL",
				Type:        TypeString,
				Default:     "https://api.rynko.dev",
				Description: "The base URL for the Rynko API",
			},
		},
		Authenticate: &Authentication{
			Headers: map[string]string{"Authorization": "Bearer {{apiKey}}"},
		},
		Test: &CredentialTest{Method: "GET", URL: "/api/v1/auth/verify"},
	}
}
