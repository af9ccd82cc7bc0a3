package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

const DefaultBaseURL = "https://www.fut.gg"

// The extinct marker is plain text in the price cell of both the listing and
// the player page. String matching is the whole contract with the site.
const extinctMarker = "EXTINCT"

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
}

var ratingRe = regexp.MustCompile(`\b([4-9][0-9])\b`)

// Client scrapes fut.gg listing and player pages. All requests go through a
// shared rate limiter so monitoring stays polite regardless of caller.
type Client struct {
	Base    string
	HTTP    *http.Client
	Logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Checker = (*Client)(nil)

func NewClient(base string, timeout time.Duration, rps float64, logger *zap.Logger) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if rps <= 0 {
		rps = 0.5
	}
	return &Client{
		Base:    strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Client) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// Check fetches a card's own page and looks for the extinct marker.
func (c *Client) Check(ctx context.Context, card *domain.Card) (CheckResult, error) {
	doc, err := c.fetch(ctx, card.SourceURL)
	if err != nil {
		return CheckResult{}, err
	}

	status := domain.StatusNormal
	if strings.Contains(strings.ToUpper(doc.Text()), extinctMarker) {
		status = domain.StatusExtinct
	}

	imageURL := ""
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if strings.Contains(src, "fut.gg") &&
			(strings.Contains(src, "cdn-cgi") || strings.Contains(src, "image")) {
			imageURL = src
			return false
		}
		return true
	})

	return CheckResult{
		Status:    status,
		ImageURL:  imageURL,
		CheckedAt: time.Now().UTC(),
	}, nil
}

// ScrapeListing extracts cards from one page of the players listing. It
// returns whatever it can parse; pages with no player links yield an error
// so callers can tell "site changed" apart from "end of list".
func (c *Client) ScrapeListing(ctx context.Context, page int) ([]*domain.Card, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf("%s/players/?page=%d", c.Base, page))
	if err != nil {
		return nil, err
	}

	links := doc.Find(`a[href*="/players/"]`)
	if links.Length() == 0 {
		return nil, fmt.Errorf("listing page %d: no player links (page structure changed?)", page)
	}

	seen := make(map[string]bool)
	var cards []*domain.Card
	links.Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		if card := c.cardFromLink(link, href); card != nil {
			cards = append(cards, card)
		}
	})

	c.Logger.Debug("listing_scraped",
		zap.Int("page", page),
		zap.Int("links", links.Length()),
		zap.Int("cards", len(cards)),
	)
	return cards, nil
}

func (c *Client) cardFromLink(link *goquery.Selection, href string) *domain.Card {
	id := CardIDFromURL(href)
	if id == "" {
		return nil
	}

	name := strings.TrimSpace(link.Text())
	container := link.Closest("div, article, li")
	if name == "" && container.Length() > 0 {
		name = strings.TrimSpace(container.Find("h1, h2, h3, h4, span").First().Text())
	}
	if len(name) < 2 {
		return nil
	}

	rating := 0
	if container.Length() > 0 {
		if m := ratingRe.FindString(container.Text()); m != "" {
			rating, _ = strconv.Atoi(m)
		}
	}
	if rating == 0 {
		return nil
	}

	sourceURL := href
	if strings.HasPrefix(href, "/") {
		sourceURL = c.Base + href
	}

	return &domain.Card{
		ID:        domain.CardID(id),
		Name:      name,
		Rating:    rating,
		SourceURL: sourceURL,
	}
}

// CardIDFromURL pulls the fut.gg id out of a /players/<id>/ style URL or href.
func CardIDFromURL(href string) string {
	parts := strings.Split(href, "/")
	for i, p := range parts {
		if p == "players" && i+1 < len(parts) {
			id := parts[i+1]
			if j := strings.IndexByte(id, '?'); j >= 0 {
				id = id[:j]
			}
			if id != "" {
				return id
			}
		}
	}
	return ""
}
