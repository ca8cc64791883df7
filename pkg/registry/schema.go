package registry

// Node kinds.
const (
	KindAction     = "action"
	KindTrigger    = "trigger"
	KindCredential = "credential"
)

// Property types.
const (
	TypeOptions         = "options"
	TypeString          = "string"
	TypeBoolean         = "boolean"
	TypeCollection      = "collection"
	TypeFixedCollection = "fixedCollection"
)

// NodeDescription declares a node or credential: its parameters, their
// option sets, defaults and display conditions.
type NodeDescription struct {
	Name        string               `json:"name"`
	DisplayName string               `json:"displayName"`
	Description string               `json:"description"`
	Kind        string               `json:"kind"`
	Version     int                  `json:"version"`
	Group       []string             `json:"group,omitempty"`
	Icon        string               `json:"icon,omitempty"`
	Subtitle    string               `json:"subtitle,omitempty"`
	TaskType    string               `json:"taskType,omitempty"`
	Credentials []CredentialRef      `json:"credentials,omitempty"`
	Webhooks    []WebhookDescription `json:"webhooks,omitempty"`
	Properties  []Property           `json:"properties"`

	// Credential only.
	DocumentationURL string          `json:"documentationUrl,omitempty"`
	Authenticate     *Authentication `json:"authenticate,omitempty"`
	Test             *CredentialTest `json:"test,omitempty"`
}

type CredentialRef struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

type WebhookDescription struct {
	Name         string `json:"name"`
	HTTPMethod   string `json:"httpMethod"`
	ResponseMode string `json:"responseMode"`
	Path         string `json:"path"`
}

// Authentication is a generic header template; {{apiKey}} is replaced by
// the credential value.
type Authentication struct {
	Headers map[string]string `json:"headers"`
}

type CredentialTest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type Property struct {
	Name             string          `json:"name"`
	DisplayName      string          `json:"displayName"`
	Type             string          `json:"type"`
	Default          interface{}     `json:"default"`
	Required         bool            `json:"required,omitempty"`
	NoDataExpression bool            `json:"noDataExpression,omitempty"`
	Description      string          `json:"description,omitempty"`
	Placeholder      string          `json:"placeholder,omitempty"`
	Password         bool            `json:"password,omitempty"`
	Options          []Option        `json:"options,omitempty"`
	LoadOptions      *LoadOptions    `json:"loadOptions,omitempty"`
	DisplayOptions   *DisplayOptions `json:"displayOptions,omitempty"`

	// Collection holds the optional fields of a collection property.
	Collection []Property `json:"collection,omitempty"`
	// Groups holds the repeatable groups of a fixedCollection property.
	Groups         []PropertyGroup `json:"groups,omitempty"`
	MultipleValues bool            `json:"multipleValues,omitempty"`
}

type Option struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Action      string `json:"action,omitempty"`
}

type LoadOptions struct {
	Method    string   `json:"method"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

type PropertyGroup struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Values      []Property `json:"values"`
}

// DisplayOptions shows a property only when every listed parameter has
// one of the listed values.
type DisplayOptions struct {
	Show map[string][]string `json:"show"`
}

// Visible evaluates the display condition against parameter values.
func (p Property) Visible(params map[string]interface{}) bool {
	if p.DisplayOptions == nil {
		return true
	}
	for name, allowed := range p.DisplayOptions.Show {
		v, _ := params[name].(string)
		match := false
		for _, a := range allowed {
			if a == v {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}

// OptionValues returns the static option values of an options property.
func (p Property) OptionValues() []string {
	values := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		values = append(values, o.Value)
	}
	return values
}
