package sfmc

import "template-migrator/internal/converter"

// Credentials is the provisioning triple used to mint an access token.
type Credentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Subdomain    string `json:"subdomain"`
}

// Complete reports whether every provisioning field is present.
func (c *Credentials) Complete() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != "" && c.Subdomain != ""
}

// TokenResponse holds the response from the SFMC v2/token endpoint.
type TokenResponse struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int    `json:"expires_in"`
	RestInstanceURL string `json:"rest_instance_url"`
}

// Folder is a Content Builder category.
type Folder struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parentId"`
}

type folderListResponse struct {
	Count int      `json:"count"`
	Items []Folder `json:"items"`
}

// AssetRequest describes one template asset to create.
type AssetRequest struct {
	Name     string
	Content  string
	FolderID int
	Channels map[string]bool
	Slots    map[string]converter.Slot
}

// Asset identifies a created Content Builder asset. CustomerKey is the
// destination-assigned secondary identifier.
type Asset struct {
	ID          int    `json:"id"`
	CustomerKey string `json:"customerKey"`
	Name        string `json:"name"`
}

// templateAssetType is Content Builder's asset type for templates.
var templateAssetType = map[string]interface{}{
	"id":   4,
	"name": "template",
}
