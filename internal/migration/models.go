package migration

import "template-migrator/internal/sfmc"

// Request is the body of a migration run request.
type Request struct {
	UserID          string            `json:"userId"`
	HubspotToken    string            `json:"hubspotToken,omitempty"`
	SFMCCredentials *sfmc.Credentials `json:"sfmcCredentials,omitempty"`
	Limit           int               `json:"limit,omitempty"`
	FolderID        string            `json:"folderId,omitempty"`
	CustomTemplates []CustomTemplate  `json:"customTemplates,omitempty"`
}

// CustomTemplate is a caller-supplied template that bypasses the fetch step.
type CustomTemplate struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Result is one successfully migrated template.
type Result struct {
	HubspotID   string `json:"hubspotId,omitempty"`
	CustomName  string `json:"customName"`
	SFMCID      int    `json:"sfmcId,omitempty"`
	CustomerKey string `json:"customerKey,omitempty"`
	Status      string `json:"status"`
}

// ItemError is one failed template; the run continues past it.
type ItemError struct {
	HubspotID string `json:"hubspotId,omitempty"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

// Summary is the run-level response. Every attempted template lands in
// exactly one of Migrated or Errors.
type Summary struct {
	Success        bool        `json:"success"`
	Message        string      `json:"message"`
	Migrated       []Result    `json:"migrated"`
	Errors         []ItemError `json:"errors,omitempty"`
	TemplatesCount int         `json:"templatesCount"`
	TotalAttempted int         `json:"totalAttempted"`
}

// ErrorResponse is the run-level failure body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"

	ModeCustom = "custom"
	ModeFetch  = "fetch"
)
