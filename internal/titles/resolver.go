package titles

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

const (
	UserAgent     = "BookmarkManager/1.0 (title-fetcher)"
	maxBodyBytes  = 10 << 20
	maxRedirects  = 5
	acceptHeaders = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
)

// Resolver derives a title for a url. It never fails: when the page cannot be read it falls
// back to the url host, and to the raw input when there is no host.
type Resolver struct {
	client *resty.Client
	logger *zap.SugaredLogger
}

func NewResolver(timeout time.Duration, l *zap.SugaredLogger) *Resolver {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", acceptHeaders).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetLogger(l)

	return &Resolver{
		client: client,
		logger: l,
	}
}

func NewResolverFromConfig(cfg *config.Config, l *zap.SugaredLogger) *Resolver {
	return NewResolver(cfg.TitleFetchTimeout, l)
}

func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	title, err := r.fetch(ctx, raw)
	if err != nil {
		r.logger.Debugw("title fetch failed, using fallback", "url", raw, "error", err)
		return Fallback(raw)
	}
	if title == "" {
		return Fallback(raw)
	}
	return title
}

func (r *Resolver) fetch(ctx context.Context, raw string) (string, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(raw)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		return "", errors.Wrap(err, "get")
	}
	if !resp.IsSuccess() {
		return "", errors.Errorf("unexpected status %d", resp.StatusCode())
	}

	return ExtractTitle(io.LimitReader(resp.RawBody(), maxBodyBytes))
}

// ExtractTitle returns the trimmed text of the first <title> element, cut to the title limit.
func ExtractTitle(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return models.TruncateRunes(title, models.MaxTitleLength), nil
}

// Fallback returns the host name of raw, or raw itself when it has none.
func Fallback(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
