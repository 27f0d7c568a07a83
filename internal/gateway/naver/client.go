// Package naver wraps the Naver open API news search used to feed the
// news analysis stage.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const searchURL = "https://openapi.naver.com/v1/search/news.json"

// pubDate format used by the Naver news API, e.g. "Mon, 02 Jan 2006 15:04:05 +0900".
const pubDateLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// Item is one news article with markup already stripped.
type Item struct {
	Title       string
	Description string
	PublishedAt time.Time
}

type Client struct {
	client       *resty.Client
	clientID     string
	clientSecret string
}

func NewClient(clientID, clientSecret string) (*Client, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, fmt.Errorf("naver api credentials are not configured")
	}
	client := resty.New()
	client.SetTimeout(15 * time.Second)
	client.SetHeader("X-Naver-Client-Id", clientID)
	client.SetHeader("X-Naver-Client-Secret", clientSecret)
	return &Client{client: client, clientID: clientID, clientSecret: clientSecret}, nil
}

// SetBaseURL overrides the API endpoint (tests only).
func (c *Client) SetBaseURL(u string) {
	c.client.SetBaseURL(u)
}

// Search returns up to display recent articles for query, newest first.
func (c *Client) Search(ctx context.Context, query string, display int) ([]Item, error) {
	if display <= 0 {
		display = 10
	}
	target := searchURL
	if c.client.BaseURL != "" {
		target = "/v1/search/news.json"
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":   query,
			"display": strconv.Itoa(display),
			"start":   "1",
			"sort":    "date",
		}).
		Get(target)
	if err != nil {
		return nil, fmt.Errorf("naver news request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("naver news api error %d: %s", resp.StatusCode(), resp.String())
	}

	var raw struct {
		Items []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PubDate     string `json:"pubDate"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("parsing naver news response failed: %w", err)
	}

	items := make([]Item, 0, len(raw.Items))
	for _, it := range raw.Items {
		published, err := time.Parse(pubDateLayout, it.PubDate)
		if err != nil {
			// Skip articles with an unparseable date rather than failing the batch.
			continue
		}
		items = append(items, Item{
			Title:       stripMarkup(it.Title),
			Description: stripMarkup(it.Description),
			PublishedAt: published,
		})
	}
	return items, nil
}

// stripMarkup removes the <b> highlight tags the search API injects and
// unescapes the handful of entities it uses.
func stripMarkup(s string) string {
	r := strings.NewReplacer(
		"<b>", "",
		"</b>", "",
		"&quot;", `"`,
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&apos;", "'",
	)
	return r.Replace(s)
}
