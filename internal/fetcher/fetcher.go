// Package fetcher downloads a page, extracts its text and stores both.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// PageStore persists fetched pages.
type PageStore interface {
	SaveStoredPage(ctx context.Context, page *entities.StoredPage) error
}

type Config struct {
	Timeout      time.Duration
	UserAgent    string
	StorageDir   string
	MaxBodyBytes int64
}

// Fetcher is safe for concurrent use.
type Fetcher struct {
	client  *resty.Client
	archive *Archive
	store   PageStore
	log     *logger.Logger
	now     func() time.Time
}

func New(cfg Config, store PageStore, log *logger.Logger) (*Fetcher, error) {
	archive, err := NewArchive(cfg.StorageDir)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if cfg.MaxBodyBytes > 0 {
		// resty stops reading once the limit is passed.
		client.SetResponseBodyLimit(int(cfg.MaxBodyBytes))
	}

	return &Fetcher{
		client:  client,
		archive: archive,
		store:   store,
		log:     log.Component("fetcher"),
		now:     time.Now,
	}, nil
}

// Process fetches url and stores its content. It is the per-item action of
// an import session.
func (f *Fetcher) Process(ctx context.Context, url string) error {
	began := time.Now()

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return fmt.Errorf("fetch %s: %w", url, ErrTooLarge)
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	if !isHTML(resp.Header().Get("Content-Type")) {
		return fmt.Errorf("fetch %s: %w (%s)", url, ErrNotHTML, resp.Header().Get("Content-Type"))
	}

	body := resp.Body()
	content, err := Extract(body)
	if err != nil {
		return fmt.Errorf("extract %s: %w", url, err)
	}

	path, err := f.archive.Save(body)
	if err != nil {
		return fmt.Errorf("archive %s: %w", url, err)
	}

	page := &entities.StoredPage{
		URL:         url,
		Title:       content.Title,
		Description: content.Description,
		Text:        content.Text,
		ContentHash: content.ContentHash,
		StoragePath: path,
		FetchedAt:   f.now(),
	}
	if err := f.store.SaveStoredPage(ctx, page); err != nil {
		return fmt.Errorf("store %s: %w", url, err)
	}

	f.log.WithFields(logger.Fields{
		logger.FieldURL:        url,
		logger.FieldSize:       len(body),
		logger.FieldDurationMs: time.Since(began).Milliseconds(),
	}).Debug("Page stored")

	return nil
}

// isHTML accepts a missing content type, since many servers omit it.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml" || strings.HasSuffix(mediaType, "+html")
}
