package importer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// noise is removed from fetched pages before the text is sent to the model.
const noise = "script, style, nav, footer, header, iframe, noscript, form, ads, .ads, #ads"

// PageFetcher downloads recipe web pages and reduces them to plain text.
type PageFetcher struct {
	client *http.Client
}

// NewPageFetcher creates a fetcher. A nil client gets a 15 second timeout.
func NewPageFetcher(client *http.Client) *PageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &PageFetcher{client: client}
}

// FetchText returns the visible text of the page at url with navigation,
// scripts and ads stripped.
func (p *PageFetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find(noise).Remove()

	var lines []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Importer formats pasted text or a fetched page into a recipe.
type Importer struct {
	formatter *Formatter
	pages     *PageFetcher
}

// New creates an Importer.
func New(formatter *Formatter, pages *PageFetcher) *Importer {
	if pages == nil {
		pages = NewPageFetcher(nil)
	}
	return &Importer{formatter: formatter, pages: pages}
}

// FromText formats raw recipe text.
func (i *Importer) FromText(ctx context.Context, raw string) (Result, error) {
	return i.formatter.Format(ctx, raw)
}

// FromURL fetches url and formats its text. The source URL is appended as the
// last step so the provenance is kept with the recipe.
func (i *Importer) FromURL(ctx context.Context, url string) (Result, error) {
	text, err := i.pages.FetchText(ctx, url)
	if err != nil {
		return Result{}, err
	}

	res, err := i.formatter.Format(ctx, text)
	if err != nil {
		return Result{}, err
	}
	res.Recipe.Steps = append(res.Recipe.Steps, "Source: "+url)
	return res, nil
}
