package bithumb

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bitgyeol/internal/config"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Client calls the signed Bithumb endpoints (balance, order placement).
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  []byte
	httpClient *http.Client
	nowFn      func() time.Time
}

// NewClient constructs a signed client from configuration.
func NewClient(cfg config.BithumbConfig) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	secret := strings.TrimSpace(cfg.APISecret)
	if key == "" || secret == "" {
		return nil, fmt.Errorf("bithumb api credentials are not configured")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		apiKey:     key,
		apiSecret:  []byte(secret),
		httpClient: &http.Client{Timeout: timeout},
		nowFn:      time.Now,
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// sign builds the Api-Sign headers: HMAC-SHA512 over
// "endpoint;query;nonce", hex digest, then base64.
func (c *Client) sign(endpoint string, params url.Values, nonce string) http.Header {
	query := params.Encode()
	signData := endpoint + ";" + query + ";" + nonce
	mac := hmac.New(sha512.New, c.apiSecret)
	mac.Write([]byte(signData))
	digest := hex.EncodeToString(mac.Sum(nil))
	encoded := base64.StdEncoding.EncodeToString([]byte(digest))

	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("api-client-type", "2")
	h.Set("Api-Key", c.apiKey)
	h.Set("Api-Nonce", nonce)
	h.Set("Api-Sign", encoded)
	return h
}

func (c *Client) post(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	nonce := strconv.FormatInt(c.nowFn().UnixMilli(), 10)
	params.Set("nonce", nonce)
	headers := c.sign(endpoint, params, nonce)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header = headers

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bithumb request failed (%s): %w", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bithumb %s returned status %d: %s", endpoint, resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

// Balance queries available funds for symbol. The quote side is always KRW.
func (c *Client) Balance(ctx context.Context, symbol string) (*Balance, error) {
	params := url.Values{}
	params.Set("currency", strings.ToUpper(symbol))
	body, err := c.post(ctx, "/info/balance", params)
	if err != nil {
		return nil, err
	}
	status := gjson.GetBytes(body, "status").String()
	if status == "5100" {
		return nil, fmt.Errorf("bithumb auth failed: %s", gjson.GetBytes(body, "message").String())
	}
	if status != "0000" {
		return nil, fmt.Errorf("bithumb balance query failed: status=%s message=%s",
			status, gjson.GetBytes(body, "message").String())
	}
	coin := strings.ToLower(symbol)
	data := gjson.GetBytes(body, "data")
	krw, err := parseDecimal(data.Get("available_krw"))
	if err != nil {
		return nil, fmt.Errorf("bithumb balance: bad available_krw: %w", err)
	}
	avail, err := parseDecimal(data.Get("available_" + coin))
	if err != nil {
		return nil, fmt.Errorf("bithumb balance: bad available_%s: %w", coin, err)
	}
	last, err := parseDecimal(data.Get("xcoin_last_" + coin))
	if err != nil {
		return nil, fmt.Errorf("bithumb balance: bad xcoin_last_%s: %w", coin, err)
	}
	return &Balance{AvailableKRW: krw, AvailableCoin: avail, LastPrice: last}, nil
}

// PlaceOrder submits a limit order and returns the exchange order id.
func (c *Client) PlaceOrder(ctx context.Context, symbol string, side OrderSide, units, price decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("order_currency", strings.ToUpper(symbol))
	params.Set("payment_currency", "KRW")
	params.Set("units", units.String())
	params.Set("price", price.String())
	params.Set("type", string(side))

	body, err := c.post(ctx, "/trade/place", params)
	if err != nil {
		return "", err
	}
	if status := gjson.GetBytes(body, "status").String(); status != "0000" {
		return "", fmt.Errorf("bithumb order rejected: status=%s message=%s",
			status, gjson.GetBytes(body, "message").String())
	}
	orderID := gjson.GetBytes(body, "order_id").String()
	if orderID == "" {
		return "", fmt.Errorf("bithumb accepted the order but returned no order_id")
	}
	return orderID, nil
}

func parseDecimal(r gjson.Result) (decimal.Decimal, error) {
	s := strings.TrimSpace(r.String())
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	return decimal.NewFromString(s)
}
