package pocket

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is a saved article as returned by /v3/get with detailType=simple.
type Item struct {
	ItemID        string `json:"item_id"`
	ResolvedTitle string `json:"resolved_title"`
	ResolvedURL   string `json:"resolved_url"`
	GivenTitle    string `json:"given_title"`
	GivenURL      string `json:"given_url"`
}

// Title prefers the resolved title and falls back to the URL.
func (i Item) Title() string {
	switch {
	case i.ResolvedTitle != "":
		return i.ResolvedTitle
	case i.GivenTitle != "":
		return i.GivenTitle
	default:
		return i.URL()
	}
}

func (i Item) URL() string {
	if i.ResolvedURL != "" {
		return i.ResolvedURL
	}
	return i.GivenURL
}

// itemList decodes the "list" field, which is an object keyed by item_id,
// or an empty array when the account has nothing saved.
type itemList []Item

func (l *itemList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("itemList: %w", err)
		}
		*l = items
		return nil
	}

	var byID map[string]Item
	if err := json.Unmarshal(trimmed, &byID); err != nil {
		return fmt.Errorf("itemList: %w", err)
	}
	items := make([]Item, 0, len(byID))
	for id, item := range byID {
		if item.ItemID == "" {
			item.ItemID = id
		}
		items = append(items, item)
	}
	*l = items
	return nil
}
