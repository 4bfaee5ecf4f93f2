package sfmc

import (
	"context"
	"fmt"
	"net/http"
)

// CreateAsset creates one template asset in the given category. A single
// call, no retry; failures propagate verbatim as the item-level error.
func (c *Client) CreateAsset(ctx context.Context, req AssetRequest) (*Asset, error) {
	payload := map[string]interface{}{
		"name":      req.Name,
		"assetType": templateAssetType,
		"content":   req.Content,
		"category": map[string]interface{}{
			"id": req.FolderID,
		},
		"channels": req.Channels,
		"slots":    req.Slots,
	}

	var asset Asset
	if err := c.doJSON(ctx, http.MethodPost, "/asset/v1/content/assets", payload, &asset); err != nil {
		return nil, fmt.Errorf("failed to create asset %q: %w", req.Name, err)
	}

	c.logger.Info("Created SFMC asset", map[string]interface{}{
		"assetId":     asset.ID,
		"customerKey": asset.CustomerKey,
		"name":        req.Name,
		"folderId":    req.FolderID,
	})

	return &asset, nil
}
