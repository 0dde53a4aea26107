package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(t *testing.T, html string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestPosting(t *testing.T) {
	url := serve(t, `<html><body><header>Acme</header><main><h1>ML Engineer</h1>
<p>London, onsite.</p></main></body></html>`)

	page, err := Posting(context.Background(), url, PostingOptions{HTTP: fastOptions()})
	require.NoError(t, err)
	assert.Equal(t, PlatformUnknown, page.Platform)
	assert.Equal(t, "ML Engineer\nLondon, onsite.", page.Text)
	assert.False(t, page.Rendered)
}

func TestPosting_BrowserFallback(t *testing.T) {
	url := serve(t, `<html><body><div id="root">Loading</div></body></html>`)
	long := strings.Repeat("Design distributed systems. ", 30)

	var rendered bool
	page, err := Posting(context.Background(), url, PostingOptions{
		HTTP:    fastOptions(),
		Browser: true,
		render: func(_ context.Context, _ string, timeout time.Duration, _ *zap.Logger) (string, error) {
			rendered = true
			assert.Equal(t, DefaultTimeout, timeout)
			return "<html><body><main>" + long + "</main></body></html>", nil
		},
	})
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.True(t, page.Rendered)
	assert.Equal(t, strings.TrimSpace(long), page.Text)
}

func TestPosting_BrowserFailureKeepsStaticText(t *testing.T) {
	url := serve(t, `<html><body><main>Short posting</main></body></html>`)

	page, err := Posting(context.Background(), url, PostingOptions{
		HTTP:    fastOptions(),
		Browser: true,
		render: func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
			return "", errors.New("chrome not installed")
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Short posting", page.Text)
	assert.False(t, page.Rendered)
}

func TestPosting_EmptyPage(t *testing.T) {
	url := serve(t, `<html><body><nav>only nav</nav></body></html>`)

	_, err := Posting(context.Background(), url, PostingOptions{HTTP: fastOptions()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text found")
}
