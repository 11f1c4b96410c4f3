package parse

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobwatch/internal/domain"
)

// ErrParse marks structural failure of the listing document itself.
// Missing cards are not an error; the page layout drifts and the run should
// degrade to "nothing parsed" with a warning instead of crashing.
var ErrParse = errors.New("parse error")

var (
	payRe   = regexp.MustCompile(`\$\s?\d[\d.,]*(?:\s?[-–]\s?\$?\s?\d[\d.,]*)?\s?/\s?hr`)
	hiredRe = regexp.MustCompile(`\d+\+?\s+hired recently`)
)

// Parser extracts job cards from the listing page HTML.
type Parser struct {
	baseURL  *url.URL
	siteName string
}

func New(listingURL, siteName string) (*Parser, error) {
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad listing url %q: %v", ErrParse, listingURL, err)
	}
	return &Parser{baseURL: base, siteName: siteName}, nil
}

// Parse returns the job records found in raw, plus warnings for cards that
// had to be skipped. Only an untokenizable document yields a non-nil error.
func (p *Parser) Parse(raw []byte) ([]domain.JobRecord, []string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read document: %v", ErrParse, err)
	}

	var (
		records  []domain.JobRecord
		warnings []string
	)

	cards := doc.Find(`a[href*="/jobs/list_"]`)
	if cards.Length() == 0 {
		warnings = append(warnings, "no job cards found; page structure may have changed")
		return records, warnings, nil
	}

	cards.Each(func(i int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			warnings = append(warnings, fmt.Sprintf("card %d: anchor without href, skipped", i))
			return
		}

		abs := p.absURL(href)

		title := CleanText(a.Find("h3").First().Text())
		if title == "" {
			// Some card variants put the title straight in the anchor.
			if t := CleanText(a.Text()); t != "" && !looksLikeJunkTitle(t) {
				title = t
			}
		}

		id := siteID(href)
		if id == "" {
			if title == "" {
				warnings = append(warnings, fmt.Sprintf("card %d: no site id and no title (%s), skipped", i, abs))
				return
			}
			id = domain.DeriveID(title, p.siteName, abs)
		}
		if title == "" {
			title = "Unknown Title"
		}

		extra := map[string]string{}
		cardText := CleanText(a.Text())
		if m := payRe.FindString(cardText); m != "" {
			extra["pay"] = m
		}
		if m := hiredRe.FindString(cardText); m != "" {
			extra["hired"] = m
		}

		records = append(records, domain.JobRecord{
			ID:      id,
			Title:   title,
			Company: p.siteName,
			URL:     abs,
			Extra:   extra,
		})
	})

	return records, warnings, nil
}

// siteID pulls the stable listing id out of an href like
// /jobs/list_AAAA2222. Volatile text never feeds the id.
func siteID(href string) string {
	_, tail, found := strings.Cut(href, "list_")
	if !found {
		return ""
	}
	for _, cut := range []string{"?", "#", "/"} {
		if j := strings.Index(tail, cut); j >= 0 {
			tail = tail[:j]
		}
	}
	return strings.TrimSpace(tail)
}

func (p *Parser) absURL(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return p.baseURL.ResolveReference(ref).String()
}
