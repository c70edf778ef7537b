// Package pagination implements opaque cursor paging for list endpoints.
// Cursors are base64-wrapped JSON so clients treat them as tokens, not
// as positions they can fabricate.
package pagination

import (
	"encoding/base64"
	"encoding/json"
)

// Pagination binds the paging query parameters of a list request.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=10" validate:"gte=1,lte=250"`
}

// Cursor marks the last row of the previous page. Listings here order by
// snowflake id, so the id alone is a total order.
type Cursor struct {
	ID string `json:"id,omitempty"`
}

// PageInfo accompanies every paged response.
type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
