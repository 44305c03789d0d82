package feed

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/efronlicht/postindex/index"
	"go.uber.org/zap"
)

// rss is just enough of an RSS 2.0 document to check what Build wrote.
type rss struct {
	Version string `xml:"version,attr"`
	Channel struct {
		Link          string `xml:"link"`
		LastBuildDate string `xml:"lastBuildDate"`
		TTL           int    `xml:"ttl"`
		Items         []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
			GUID        struct {
				IsPermaLink string `xml:"isPermaLink,attr"`
				Value       string `xml:",chardata"`
			} `xml:"guid"`
		} `xml:"item"`
	} `xml:"channel"`
}

func testConfig() Config {
	return Config{
		Index:       index.DefaultConfig(),
		Title:       "efron's blog",
		Description: "posts",
		BaseURL:     "https://example.com/",
		OutFile:     "feed.xml",
		TTL:         60,
	}
}

func TestBuild(t *testing.T) {
	fsys := afero.NewMemMapFs()
	mtime := time.Date(2023, 7, 4, 12, 0, 0, 0, time.UTC)
	for name, content := range map[string]string{
		"_posts/2024-01-02.html": "<title>Second</title><small>2024-01-02</small><p>The <b>second</b> post &amp; more.</p>",
		"_posts/2023-12-25.html": "<title>First</title><small>sometime</small>",
		"_posts/2023-01-02.html": "<title>Zeroth</title><small>Jan 2</small>",
	} {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	for _, name := range []string{"_posts/2023-12-25.html", "_posts/2023-01-02.html"} {
		require.NoError(t, fsys.Chtimes(name, mtime, mtime))
	}

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	n, err := Build(fsys, testConfig(), now, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	b, err := afero.ReadFile(fsys, "feed.xml")
	require.NoError(t, err)
	var got rss
	require.NoError(t, xml.Unmarshal(b, &got))
	assert.Equal(t, "2.0", got.Version)
	assert.Equal(t, "https://example.com/site-links.html", got.Channel.Link)
	assert.Equal(t, now.Format(time.RFC1123Z), got.Channel.LastBuildDate)
	assert.Equal(t, 60, got.Channel.TTL)
	require.Len(t, got.Channel.Items, 3)

	second, first, zeroth := got.Channel.Items[0], got.Channel.Items[1], got.Channel.Items[2]
	assert.Equal(t, "Second", second.Title)
	assert.Equal(t, "https://example.com/_posts/2024-01-02.html", second.Link)
	assert.Equal(t, "The second post & more.", second.Description)
	assert.Equal(t, "Tue, 02 Jan 2024 00:00:00 +0000", second.PubDate)
	assert.Equal(t, GUIDFor(second.Link), second.GUID.Value)
	assert.Equal(t, "false", second.GUID.IsPermaLink)

	assert.Equal(t, "First", first.Title)
	assert.Equal(t, mtime.Format(time.RFC1123Z), first.PubDate, "unparseable date falls back to the modification time")
	assert.Equal(t, "Zeroth", zeroth.Title)
	assert.Equal(t, mtime.Format(time.RFC1123Z), zeroth.PubDate, "a date without a year falls back to the modification time")
}

func TestBuildMissingRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	n, err := Build(fsys, testConfig(), time.Now(), zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)
	ok, err := afero.Exists(fsys, "feed.xml")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGUIDForIsStable(t *testing.T) {
	a := GUIDFor("https://example.com/_posts/a.html")
	assert.Equal(t, a, GUIDFor("https://example.com/_posts/a.html"))
	assert.NotEqual(t, a, GUIDFor("https://example.com/_posts/b.html"))
}

func TestLink(t *testing.T) {
	assert.Equal(t, "https://example.com/_posts/blog/b.html", Link("https://example.com", "_posts", "blog/b.html"))
	assert.Equal(t, "https://example.com/posts/a.html", Link("https://example.com/", "/posts", "a.html"))
}

func TestPublished(t *testing.T) {
	for _, tt := range []struct {
		in, want string
		ok       bool
	}{
		{"", "", false},
		{"2024-01-02", "Tue, 02 Jan 2024 00:00:00 +0000", true},
		{"Jan 2, 2024", "Tue, 02 Jan 2024 00:00:00 +0000", true},
		{"not a date", "", false},
		// no year: dateparse would put these in year 0.
		{"Jan 2", "", false},
		{"Tue,", "", false},
		{"12:", "", false},
	} {
		got, ok := Published(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got.Format(time.RFC1123Z), tt.in)
		} else {
			assert.True(t, got.IsZero(), tt.in)
		}
	}
}
