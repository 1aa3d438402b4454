package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readlog/readlog-server/internal/logger"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
<channel>
  <title>search results</title>
  <item>
    <title>ignored rss title</title>
    <category>雑誌</category>
    <dc:title>プログラミング言語Go 特集</dc:title>
  </item>
  <item>
    <category>図書</category>
    <dc:title>プログラミング言語Ｇｏ</dc:title>
    <dc:creator>Donovan, Alan A. A.</dc:creator>
    <dc:creator>柴田, 芳樹</dc:creator>
    <dc:creator><![CDATA[柴田, 芳樹]]></dc:creator>
    <dc:publisher>丸善出版</dc:publisher>
    <dcterms:issued>2016.6</dcterms:issued>
  </item>
  <item>
    <category>図書</category>
    <dc:title>Unrelated title</dc:title>
  </item>
  <item>
    <category>図書</category>
    <category>電子</category>
    <dc:title>プログラミング 言語 go 入門</dc:title>
    <dc:creator>山田太郎</dc:creator>
  </item>
</channel>
</rss>`

func newTestClient(url string) *Client {
	return NewClient(url, "図書", logger.Discard().Logger)
}

func TestClient_SearchByTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "プログラミング言語go", r.URL.Query().Get("title"))
		assert.Equal(t, "50", r.URL.Query().Get("cnt"))
		w.Header().Set("Content-Type", "application/rss+xml; charset=UTF-8")
		_, _ = w.Write([]byte(feedFixture))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).SearchByTitle(context.Background(), "プログラミング言語go")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "プログラミング言語Ｇｏ", got[0].Title)
	assert.Equal(t, "Donovan Alan A. A.、柴田芳樹", got[0].Author)
	assert.Equal(t, "丸善出版", got[0].Publisher)
	require.NotNil(t, got[0].PublishedYear)
	assert.Equal(t, 2016, *got[0].PublishedYear)

	assert.Equal(t, "プログラミング 言語 go 入門", got[1].Title)
	assert.Equal(t, "山田太郎", got[1].Author)
	assert.Nil(t, got[1].PublishedYear)
}

func TestClient_SearchByTitle_CapsCandidates(t *testing.T) {
	item := `<item><category>図書</category><dc:title>Go</dc:title></item>`
	body := `<rss xmlns:dc="http://purl.org/dc/elements/1.1/"><channel>`
	for range 8 {
		body += item
	}
	body += `</channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).SearchByTitle(context.Background(), "go")
	require.NoError(t, err)
	assert.Len(t, got, MaxCandidates)
}

func TestClient_SearchByTitle_UpstreamFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	for range 3 {
		_, err := c.SearchByTitle(context.Background(), "go")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	}

	_, err := c.SearchByTitle(context.Background(), "go")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "go言語", normalizeTitle("ＧＯ 言語"))
	assert.Equal(t, "abc", normalizeTitle(" A\tb  C "))
}

func TestNormalizeAuthor(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"夏目, 漱石", "夏目漱石"},
		{"夏目,漱石", "夏目漱石"},
		{"Orwell, George", "Orwell George"},
		{"  Plato ", "Plato"},
		{"なかがわ, りえこ", "なかがわりえこ"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAuthor(tt.raw))
		})
	}
}

func TestExtractYear(t *testing.T) {
	y := extractYear("c2019.3")
	require.NotNil(t, y)
	assert.Equal(t, 2019, *y)
	assert.Nil(t, extractYear("n.d."))
}
