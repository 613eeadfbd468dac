// Package feed fetches and parses RSS 2.0 / Atom feeds into a normalized
// entry list. Only the fields the news tool reports are retained.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/awsq/awsq/internal/httpkit"
)

const maxFeedBytes = 2 * 1024 * 1024

// Entry is a single normalized feed item.
type Entry struct {
	Title     string
	Link      string
	Published time.Time
	Summary   string
}

// Fetcher downloads and parses a feed URL.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher with a bounded request timeout.
func New() *Fetcher {
	return &Fetcher{client: httpkit.NewClient(httpkit.WithTimeout(15 * time.Second))}
}

// Fetch downloads url and returns its entries in document order.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: invalid url: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		httpkit.DrainAndClose(resp.Body, 1024)
		return nil, fmt.Errorf("feed: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("feed: read body: %w", err)
	}
	return Parse(data)
}

// rssFeed is the XML structure for RSS 2.0 feeds.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// atomFeed is the XML structure for Atom feeds.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Published string     `xml:"published"`
	Summary   string     `xml:"summary"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// Parse decodes data as either RSS 2.0 or Atom. RSS is tried first because
// the AWS What's New feed uses it.
func Parse(data []byte) ([]Entry, error) {
	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err == nil && rss.XMLName.Local == "rss" {
		return rssEntries(&rss), nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && atom.XMLName.Local == "feed" {
		return atomEntries(&atom), nil
	}

	return nil, fmt.Errorf("feed: unrecognized format (expected RSS 2.0 or Atom)")
}

func rssEntries(rf *rssFeed) []Entry {
	entries := make([]Entry, 0, len(rf.Channel.Items))
	for _, item := range rf.Channel.Items {
		pub, _ := time.Parse(time.RFC1123Z, item.PubDate)
		if pub.IsZero() {
			// Some feeds publish RFC1123 without a numeric timezone.
			pub, _ = time.Parse(time.RFC1123, item.PubDate)
		}
		entries = append(entries, Entry{
			Title:     item.Title,
			Link:      item.Link,
			Published: pub,
			Summary:   item.Description,
		})
	}
	return entries
}

func atomEntries(af *atomFeed) []Entry {
	entries := make([]Entry, 0, len(af.Entries))
	for _, e := range af.Entries {
		pub, _ := time.Parse(time.RFC3339, e.Published)
		entries = append(entries, Entry{
			Title:     e.Title,
			Link:      atomBestLink(e.Links),
			Published: pub,
			Summary:   e.Summary,
		})
	}
	return entries
}

// atomBestLink prefers rel="alternate", falling back to the first link.
func atomBestLink(links []atomLink) string {
	if len(links) == 0 {
		return ""
	}
	for _, l := range links {
		if l.Rel == "alternate" || l.Rel == "" {
			return l.Href
		}
	}
	return links[0].Href
}
