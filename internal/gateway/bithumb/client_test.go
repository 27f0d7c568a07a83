package bithumb

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitgyeol/internal/config"
)

func newSignedTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(config.BithumbConfig{
		APIURL:    serverURL,
		APIKey:    "test-key",
		APISecret: "test-secret",
	})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.BithumbConfig{APIURL: "https://api.bithumb.com"})
	assert.Error(t, err)
	_, err = NewClient(config.BithumbConfig{APIKey: "k"})
	assert.Error(t, err)
}

func TestSignProducesBase64HexDigest(t *testing.T) {
	c := newSignedTestClient(t, "https://api.bithumb.com")
	params := url.Values{}
	params.Set("currency", "BTC")
	params.Set("nonce", "1700000000000")

	h := c.sign("/info/balance", params, "1700000000000")
	assert.Equal(t, "test-key", h.Get("Api-Key"))
	assert.Equal(t, "1700000000000", h.Get("Api-Nonce"))
	assert.Equal(t, "2", h.Get("api-client-type"))

	// The signature is the hex HMAC-SHA512 digest, base64 encoded: 128 hex
	// characters before encoding.
	raw, err := base64.StdEncoding.DecodeString(h.Get("Api-Sign"))
	require.NoError(t, err)
	assert.Len(t, raw, 128)

	// Signing the same input twice is deterministic.
	again := c.sign("/info/balance", params, "1700000000000")
	assert.Equal(t, h.Get("Api-Sign"), again.Get("Api-Sign"))

	// A different nonce changes the signature.
	other := c.sign("/info/balance", params, "1700000000001")
	assert.NotEqual(t, h.Get("Api-Sign"), other.Get("Api-Sign"))
}

func TestBalanceParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info/balance", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "BTC", r.PostForm.Get("currency"))
		assert.NotEmpty(t, r.PostForm.Get("nonce"))
		assert.NotEmpty(t, r.Header.Get("Api-Sign"))
		assert.Equal(t, r.PostForm.Get("nonce"), r.Header.Get("Api-Nonce"))

		w.Write([]byte(`{
			"status": "0000",
			"data": {
				"available_krw": "123456.78",
				"available_btc": "0.5",
				"xcoin_last_btc": "50000000"
			}
		}`))
	}))
	defer srv.Close()

	c := newSignedTestClient(t, srv.URL)
	bal, err := c.Balance(context.Background(), "btc")
	require.NoError(t, err)
	assert.True(t, bal.AvailableKRW.Equal(decimal.RequireFromString("123456.78")))
	assert.True(t, bal.AvailableCoin.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, bal.LastPrice.Equal(decimal.NewFromInt(50_000_000)))
}

func TestBalanceAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"5100","message":"Bad Request.(Auth Data)"}`))
	}))
	defer srv.Close()

	c := newSignedTestClient(t, srv.URL)
	_, err := c.Balance(context.Background(), "BTC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth")
}

func TestBalanceAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"5500","message":"Invalid Parameter"}`))
	}))
	defer srv.Close()

	c := newSignedTestClient(t, srv.URL)
	_, err := c.Balance(context.Background(), "BTC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5500")
}

func TestPlaceOrderSubmitsLimitOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade/place", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "BTC", r.PostForm.Get("order_currency"))
		assert.Equal(t, "KRW", r.PostForm.Get("payment_currency"))
		assert.Equal(t, "bid", r.PostForm.Get("type"))
		assert.Equal(t, "0.0002", r.PostForm.Get("units"))
		assert.Equal(t, "50000000", r.PostForm.Get("price"))

		w.Write([]byte(`{"status":"0000","order_id":"C0101000000001"}`))
	}))
	defer srv.Close()

	c := newSignedTestClient(t, srv.URL)
	orderID, err := c.PlaceOrder(context.Background(), "BTC", OrderSideBid,
		decimal.RequireFromString("0.0002"), decimal.NewFromInt(50_000_000))
	require.NoError(t, err)
	assert.Equal(t, "C0101000000001", orderID)
}

func TestPlaceOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"5600","message":"주문수량이 부족합니다"}`))
	}))
	defer srv.Close()

	c := newSignedTestClient(t, srv.URL)
	_, err := c.PlaceOrder(context.Background(), "BTC", OrderSideAsk,
		decimal.NewFromInt(1), decimal.NewFromInt(1000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5600")
}

func TestPlaceOrderMissingOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0000"}`))
	}))
	defer srv.Close()

	c := newSignedTestClient(t, srv.URL)
	_, err := c.PlaceOrder(context.Background(), "BTC", OrderSideBid,
		decimal.NewFromInt(1), decimal.NewFromInt(1000))
	assert.Error(t, err)
}
