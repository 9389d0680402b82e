// Package catalog fetches the remote directory listings the wizard offers for
// download: OSM region extracts from Geofabrik and Wikipedia archives from
// Kiwix.
package catalog

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"etsetup/internal/config"
)

// Item is one downloadable entry from a remote listing.
type Item struct {
	ID           string `json:"id"`
	DisplayLabel string `json:"display"`
	FileName     string `json:"file"`
	URL          string `json:"url"`
	// SizeHint is the size column from the listing, when one exists.
	SizeHint      string `json:"size,omitempty"`
	Lang          string `json:"lang,omitempty"`
	ExistsLocally bool   `json:"exists"`
}

// Fetcher retrieves and parses remote listings.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher whose requests time out after the given
// duration.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

func (f *Fetcher) get(url string) (*html.Node, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: server returned %s", url, resp.Status)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing from %s: %w", url, err)
	}
	return doc, nil
}

type anchor struct {
	href string
	// trailing is the text that follows the link, which directory indexes
	// use for the date and size columns.
	trailing string
}

func collectAnchors(doc *html.Node) []anchor {
	var anchors []anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				a := anchor{href: attr.Val}
				if sib := n.NextSibling; sib != nil && sib.Type == html.TextNode {
					a.trailing = sib.Data
				}
				anchors = append(anchors, a)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return anchors
}

// RegionExtracts lists the per-region extract files offered by src, excluding
// the whole-country aggregate. Entries are deduplicated and sorted by display
// name.
func (f *Fetcher) RegionExtracts(src config.CatalogSource) ([]Item, error) {
	doc, err := f.get(src.ListingURL)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var items []Item
	for _, a := range collectAnchors(doc) {
		if !strings.HasSuffix(a.href, ".osm.pbf") {
			continue
		}
		if src.Aggregate != "" && strings.Contains(a.href, src.Aggregate+"-latest") {
			continue
		}
		file := path.Base(a.href)
		id := strings.TrimSuffix(file, "-latest.osm.pbf")
		if seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, Item{
			ID:           id,
			DisplayLabel: titleCase(strings.ReplaceAll(id, "-", " ")),
			FileName:     file,
			URL:          src.BaseURL + "/" + file,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DisplayLabel < items[j].DisplayLabel })
	return items, nil
}

// ArchiveFiles lists the English and French Wikipedia archives from the
// listing URL, sorted by file name. The size column is kept as a display
// hint.
func (f *Fetcher) ArchiveFiles(listingURL string) ([]Item, error) {
	doc, err := f.get(listingURL)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var items []Item
	for _, a := range collectAnchors(doc) {
		file := path.Base(a.href)
		if !strings.HasSuffix(file, ".zim") {
			continue
		}
		var lang string
		switch {
		case strings.HasPrefix(file, "wikipedia_en_"):
			lang = "en"
		case strings.HasPrefix(file, "wikipedia_fr_"):
			lang = "fr"
		default:
			continue
		}
		id := strings.TrimSuffix(file, ".zim")
		if seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, Item{
			ID:           id,
			DisplayLabel: strings.TrimSuffix(file, ".zim"),
			FileName:     file,
			URL:          listingURL + "/" + file,
			SizeHint:     sizeColumn(a.trailing),
			Lang:         lang,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].FileName < items[j].FileName })
	return items, nil
}

// sizeColumn extracts the size from an index row's trailing text, which looks
// like "   2026-01-15 10:23  319M". Bare numbers get a B suffix.
func sizeColumn(trailing string) string {
	fields := strings.Fields(trailing)
	if len(fields) == 0 {
		return ""
	}
	size := fields[len(fields)-1]
	if size == "-" {
		return ""
	}
	if !strings.ContainsAny(size[len(size)-1:], "KMGT") {
		size += "B"
	}
	return size
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// MarkExisting sets ExistsLocally on every item whose file is already present
// in one of the given directories.
func MarkExisting(items []Item, dirs ...string) {
	for i := range items {
		for _, dir := range dirs {
			if _, err := os.Stat(filepath.Join(dir, items[i].FileName)); err == nil {
				items[i].ExistsLocally = true
				break
			}
		}
	}
}
