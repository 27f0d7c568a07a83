package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "secret")
	assert.Error(t, err)
	_, err = NewClient("id", " ")
	assert.Error(t, err)
}

func TestSearchParsesAndStripsMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search/news.json", r.URL.Path)
		assert.Equal(t, "id-1", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "secret-1", r.Header.Get("X-Naver-Client-Secret"))
		assert.Equal(t, "비트코인", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("display"))
		assert.Equal(t, "date", r.URL.Query().Get("sort"))

		w.Write([]byte(`{
			"items": [
				{
					"title": "<b>비트코인</b> 급등 &quot;신고가&quot;",
					"description": "기관의 <b>매수</b>세가 이어졌다 &amp; 거래량 증가",
					"pubDate": "Sun, 30 Aug 2026 10:00:00 +0900"
				},
				{
					"title": "날짜가 깨진 기사",
					"description": "무시되어야 한다",
					"pubDate": "not-a-date"
				}
			]
		}`))
	}))
	defer srv.Close()

	c, err := NewClient("id-1", "secret-1")
	require.NoError(t, err)
	c.SetBaseURL(srv.URL)

	items, err := c.Search(context.Background(), "비트코인", 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, `비트코인 급등 "신고가"`, items[0].Title)
	assert.Equal(t, "기관의 매수세가 이어졌다 & 거래량 증가", items[0].Description)
	assert.Equal(t, 2026, items[0].PublishedAt.Year())
	assert.Equal(t, 30, items[0].PublishedAt.Day())
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessage":"Not Registered Client","errorCode":"024"}`))
	}))
	defer srv.Close()

	c, err := NewClient("bad", "creds")
	require.NoError(t, err)
	c.SetBaseURL(srv.URL)

	_, err = c.Search(context.Background(), "비트코인", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "a<b", stripMarkup("a&lt;b"))
	assert.Equal(t, "plain", stripMarkup("plain"))
	assert.Equal(t, "강조 없음", stripMarkup("<b>강조</b> 없음"))
}
