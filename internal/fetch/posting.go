package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PostingOptions configures Posting.
type PostingOptions struct {
	HTTP *Options
	// Browser enables the headless fallback for pages with too little static text
	Browser        bool
	BrowserTimeout time.Duration
	Logger         *zap.Logger

	render renderFunc
}

// Page is the description text extracted from a posting URL.
type Page struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	Text     string   `json:"text"`
	Rendered bool     `json:"rendered"`
}

// Posting fetches a job posting page and extracts its description text.
func Posting(ctx context.Context, rawURL string, opts PostingOptions) (*Page, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	platform := DetectPlatform(rawURL)

	res, err := URL(ctx, rawURL, opts.HTTP)
	if err != nil {
		return nil, err
	}
	text, err := ExtractMainText(res.HTML, ContentSelectors(platform), NoiseSelectors(platform)...)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to extract text", Cause: err}
	}
	page := &Page{URL: rawURL, Platform: platform, Text: text}

	if opts.Browser && ShouldUseBrowser(text) {
		render := opts.render
		if render == nil {
			render = Render
		}
		timeout := opts.BrowserTimeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		html, err := render(ctx, rawURL, timeout, log)
		if err != nil {
			log.Warn("browser fallback failed, keeping static text", zap.String("url", rawURL), zap.Error(err))
		} else if rendered, err := ExtractMainText(html, ContentSelectors(platform), NoiseSelectors(platform)...); err == nil && len(rendered) > len(text) {
			page.Text = rendered
			page.Rendered = true
		}
	}

	log.Debug("fetched posting", zap.String("url", rawURL), zap.String("platform", string(platform)), zap.Int("chars", len(page.Text)), zap.Bool("rendered", page.Rendered))
	if page.Text == "" {
		return nil, &Error{URL: rawURL, Message: "no text found on page"}
	}
	return page, nil
}
