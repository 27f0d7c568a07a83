package bithumb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// PublicClient reads the unauthenticated market data endpoints.
type PublicClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPublicClient(apiURL string, timeout time.Duration) *PublicClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PublicClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient sets the HTTP client for testing.
func (c *PublicClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *PublicClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bithumb request failed (%s): %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bithumb %s returned status %d: %s", path, resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

// Ticker fetches the current price summary for symbol (e.g. "BTC").
func (c *PublicClient) Ticker(ctx context.Context, symbol string) (*Ticker, error) {
	market := strings.ToUpper(symbol) + "_KRW"
	body, err := c.get(ctx, "/public/ticker/"+market, nil)
	if err != nil {
		return nil, err
	}
	if status := gjson.GetBytes(body, "status").String(); status != "0000" {
		return nil, fmt.Errorf("bithumb ticker error: status=%s message=%s",
			status, gjson.GetBytes(body, "message").String())
	}
	data := gjson.GetBytes(body, "data")
	t := &Ticker{
		Market:          market,
		ClosingPrice:    data.Get("closing_price").Float(),
		OpeningPrice:    data.Get("opening_price").Float(),
		MaxPrice:        data.Get("max_price").Float(),
		MinPrice:        data.Get("min_price").Float(),
		UnitsTraded24H:  data.Get("units_traded_24H").Float(),
		Fluctate24H:     data.Get("fluctate_24H").Float(),
		FluctateRate24H: data.Get("fluctate_rate_24H").Float(),
		FetchedAt:       time.Now(),
	}
	if t.ClosingPrice <= 0 {
		return nil, fmt.Errorf("bithumb ticker returned no closing price for %s", market)
	}
	return t, nil
}

// Orderbook fetches the top count bid/ask levels.
func (c *PublicClient) Orderbook(ctx context.Context, symbol string, count int) (*Orderbook, error) {
	if count <= 0 {
		count = 5
	}
	market := strings.ToUpper(symbol) + "_KRW"
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	body, err := c.get(ctx, "/public/orderbook/"+market, q)
	if err != nil {
		return nil, err
	}
	if status := gjson.GetBytes(body, "status").String(); status != "0000" {
		return nil, fmt.Errorf("bithumb orderbook error: status=%s message=%s",
			status, gjson.GetBytes(body, "message").String())
	}
	ob := &Orderbook{}
	gjson.GetBytes(body, "data.bids").ForEach(func(_, v gjson.Result) bool {
		ob.Bids = append(ob.Bids, OrderbookLevel{
			Price:    v.Get("price").Float(),
			Quantity: v.Get("quantity").Float(),
		})
		return len(ob.Bids) < count
	})
	gjson.GetBytes(body, "data.asks").ForEach(func(_, v gjson.Result) bool {
		ob.Asks = append(ob.Asks, OrderbookLevel{
			Price:    v.Get("price").Float(),
			Quantity: v.Get("quantity").Float(),
		})
		return len(ob.Asks) < count
	})
	return ob, nil
}

// MinuteCandles fetches up to count bars for the given minute unit
// (1, 3, 5, 10, 15, 30, 60) in newest-first order.
func (c *PublicClient) MinuteCandles(ctx context.Context, symbol string, unit, count int) ([]Candle, error) {
	q := url.Values{}
	q.Set("market", "KRW-"+strings.ToUpper(symbol))
	q.Set("count", strconv.Itoa(count))
	body, err := c.get(ctx, "/v1/candles/minutes/"+strconv.Itoa(unit), q)
	if err != nil {
		return nil, err
	}
	return parseCandles(body)
}

// DailyCandles fetches up to count daily bars in newest-first order.
func (c *PublicClient) DailyCandles(ctx context.Context, symbol string, count int) ([]Candle, error) {
	q := url.Values{}
	q.Set("market", "KRW-"+strings.ToUpper(symbol))
	q.Set("count", strconv.Itoa(count))
	body, err := c.get(ctx, "/v1/candles/days", q)
	if err != nil {
		return nil, err
	}
	return parseCandles(body)
}

func parseCandles(body []byte) ([]Candle, error) {
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("bithumb candle error: %s", gjson.GetBytes(body, "error.message").String())
	}
	var out []Candle
	root.ForEach(func(_, v gjson.Result) bool {
		out = append(out, Candle{
			Timestamp: time.UnixMilli(v.Get("timestamp").Int()),
			Open:      v.Get("opening_price").Float(),
			High:      v.Get("high_price").Float(),
			Low:       v.Get("low_price").Float(),
			Close:     v.Get("trade_price").Float(),
			Volume:    v.Get("candle_acc_trade_volume").Float(),
		})
		return true
	})
	// Newest first, matching the indicator pipeline's expectation.
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
