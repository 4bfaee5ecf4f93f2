package sfmc

import (
	"context"
	"fmt"
	"net/http"

	"template-migrator/internal/common/errors"
)

// ListFolders returns every Content Builder category in the account.
func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	var resp folderListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/asset/v1/content/categories?$page=1&$pagesize=500", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return resp.Items, nil
}

// CreateFolder creates a category under the given parent.
func (c *Client) CreateFolder(ctx context.Context, name string, parentID int) (*Folder, error) {
	payload := map[string]interface{}{
		"name":     name,
		"parentId": parentID,
	}

	var folder Folder
	if err := c.doJSON(ctx, http.MethodPost, "/asset/v1/content/categories", payload, &folder); err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	return &folder, nil
}

// ResolveFolder locates the named root category, then finds-or-creates the
// target category under it. Name matching is exact and case-sensitive.
// A missing root is fatal; nothing is cached across runs.
func (c *Client) ResolveFolder(ctx context.Context, rootName, targetName string) (int, error) {
	folders, err := c.ListFolders(ctx)
	if err != nil {
		return 0, errors.NewFolderResolutionFailedError(err)
	}

	rootID := 0
	for _, folder := range folders {
		if folder.Name == rootName {
			rootID = folder.ID
			break
		}
	}
	if rootID == 0 {
		return 0, errors.NewFolderNotFoundError(rootName)
	}

	for _, folder := range folders {
		if folder.Name == targetName && folder.ParentID == rootID {
			c.logger.Info("Reusing existing destination folder", map[string]interface{}{
				"folderId": folder.ID,
				"name":     targetName,
			})
			return folder.ID, nil
		}
	}

	created, err := c.CreateFolder(ctx, targetName, rootID)
	if err != nil {
		return 0, errors.NewFolderResolutionFailedError(err)
	}

	c.logger.Info("Created destination folder", map[string]interface{}{
		"folderId": created.ID,
		"parentId": rootID,
		"name":     targetName,
	})

	return created.ID, nil
}
