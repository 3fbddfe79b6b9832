package vistopia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt accepts JSON numbers as well as numeric strings, since the upstream
// API is inconsistent about quoting identifiers and sort numbers. Empty
// strings and null decode to zero.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the value as an int.
func (f FlexInt) Int() int { return int(f) }

// MediaFile is one alternative media rendition of an article.
type MediaFile struct {
	MediaKeyFullURL string `json:"media_key_full_url"`
}

// Article is a single episode within a catalog part.
type Article struct {
	ArticleID       string      `json:"article_id" validate:"required"`
	Title           string      `json:"title" validate:"required"`
	SortNumber      FlexInt     `json:"sort_number"`
	ContentURL      string      `json:"content_url"`
	DurationStr     string      `json:"duration_str"`
	MediaKeyFullURL string      `json:"media_key_full_url"`
	MediaFiles      []MediaFile `json:"media_files"`
}

// Part groups consecutive articles of a catalog.
type Part struct {
	Articles []Article `json:"part" validate:"dive"`
}

// Catalog describes a show and its episode listing.
type Catalog struct {
	ContentID       FlexInt `json:"content_id"`
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author"`
	Type            string  `json:"type"`
	BackgroundImage string  `json:"background_img"`
	Parts           []Part  `json:"catalog" validate:"dive"`
}

// Articles flattens parts into traversal order: part order, then article
// order within each part.
func (c *Catalog) Articles() []Article {
	if c == nil {
		return nil
	}
	var out []Article
	for _, part := range c.Parts {
		out = append(out, part.Articles...)
	}
	return out
}

// TotalArticles counts every article across all parts.
func (c *Catalog) TotalArticles() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, part := range c.Parts {
		total += len(part.Articles)
	}
	return total
}

// Series carries the show-level title and author used for tagging.
type Series struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author"`
}

// SearchResult is one hit of a keyword search.
type SearchResult struct {
	ID        FlexInt `json:"id"`
	DataType  string  `json:"data_type"`
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle"`
	Author    string  `json:"author"`
	ShareDesc string  `json:"share_desc"`
}

// IsContent reports whether the hit is a show rather than an article or user.
func (r SearchResult) IsContent() bool {
	return r.DataType == "content"
}

// Subscription is one entry of the authenticated user's subscriptions.
type Subscription struct {
	ContentID FlexInt `json:"content_id" validate:"required"`
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle"`
}

type listPayload[T any] struct {
	Data []T `json:"data" validate:"dive"`
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}
