package notion

import (
	"context"
	"fmt"
	"net/http"
)

const maxPageSize = 100

type queryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

type createPageRequest struct {
	Parent     parent     `json:"parent"`
	Properties Properties `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

// QueryDatabase returns every page of a database matching filter, following
// pagination until the result set is exhausted.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter *Filter) ([]Page, error) {
	var pages []Page
	req := queryRequest{Filter: filter, PageSize: maxPageSize}
	for {
		var res queryResponse
		if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", req, &res); err != nil {
			return nil, fmt.Errorf("unable to query database %s: %w", databaseID, err)
		}
		pages = append(pages, res.Results...)

		if !res.HasMore || res.NextCursor == nil || *res.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = *res.NextCursor
	}
}

// CreatePage adds a page with the given properties to a database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props Properties) (*Page, error) {
	body := createPageRequest{
		Parent:     parent{DatabaseID: databaseID},
		Properties: props,
	}
	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, fmt.Errorf("unable to create page in database %s: %w", databaseID, err)
	}
	return &page, nil
}
