package models

import "fmt"

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Workspace struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID string `json:"teamId,omitempty"`
}

type Template struct {
	ID            string   `json:"id"`
	ShortID       string   `json:"shortId"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	WorkspaceName string   `json:"workspaceName"`
	OutputFormats []string `json:"outputFormats"`
}

// Supports reports whether the template can render format.
func (t Template) Supports(format string) bool {
	for _, f := range t.OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// OptionItem is one entry of a dynamic dropdown.
type OptionItem struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

func (t Team) Option() OptionItem {
	return OptionItem{Name: t.Name, Value: t.ID}
}

func (w Workspace) Option() OptionItem {
	return OptionItem{Name: w.Name, Value: w.ID}
}

// Option labels a template as "<name> (<workspaceName>)" keyed by its short id.
func (t Template) Option() OptionItem {
	return OptionItem{
		Name:        fmt.Sprintf("%s (%s)", t.Name, t.WorkspaceName),
		Value:       t.ShortID,
		Description: t.Description,
	}
}
