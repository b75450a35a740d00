package scraper_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"card-news/internal/infra/scraper"
)

func benchFeed(n int, atom bool) string {
	var b strings.Builder
	if atom {
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><feed xmlns="http://www.w3.org/2005/Atom"><title>City desk</title>`)
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, `<entry><title>City council vote %d</title><link href="https://news.example.com/council/%d"/>`+
				`<summary>The council approved measure %d on Tuesday.</summary><updated>2024-10-07T09:00:00Z</updated></entry>`, i, i, i)
		}
		b.WriteString(`</feed>`)
		return b.String()
	}
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>City desk</title><link>https://news.example.com</link>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item><title>Bus route %d changes</title><link>https://news.example.com/bus/%d</link>`+
			`<description><![CDATA[<p>Route %d will be rerouted from <b>Monday</b>.</p>]]></description>`+
			`<pubDate>Mon, 07 Oct 2024 09:00:00 +0900</pubDate></item>`, i, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func benchServer(b *testing.B, body, contentType string) *httptest.Server {
	b.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	b.Cleanup(server.Close)
	return server
}

func BenchmarkRSSFetcher_Fetch(b *testing.B) {
	cases := []struct {
		name        string
		items       int
		atom        bool
		contentType string
	}{
		{name: "rss_10", items: 10, contentType: "application/rss+xml"},
		{name: "rss_50", items: 50, contentType: "application/rss+xml"},
		{name: "atom_20", items: 20, atom: true, contentType: "application/atom+xml"},
	}

	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			server := benchServer(b, benchFeed(c.items, c.atom), c.contentType)
			fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := fetcher.Fetch(context.Background(), server.URL); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRSSFetcher_Parallel(b *testing.B) {
	server := benchServer(b, benchFeed(20, false), "application/rss+xml")
	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = fetcher.Fetch(context.Background(), server.URL)
		}
	})
}
