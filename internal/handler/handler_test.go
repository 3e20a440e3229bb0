package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/product-review-hub/web"
)

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		name   string
		err    error
		status int
	}{
		{"up", nil, http.StatusOK},
		{"down", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
			require.NoError(t, Health(pingFunc(func(context.Context) error { return tc.err }))(c))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRenderer_EmbeddedPages(t *testing.T) {
	r, err := NewRenderer(web.Templates())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "home.html", homePage{page: page{Title: "Home", Username: "<alice>"}}, nil))
	assert.Contains(t, buf.String(), "Signed in as &lt;alice&gt;")
	assert.Contains(t, buf.String(), "No products yet.")

	assert.Error(t, r.Render(&buf, "_partials.html", nil, nil))
	assert.Error(t, r.Render(&buf, "missing.html", nil, nil))
}

func TestRenderer_ParseError(t *testing.T) {
	fsys := fstest.MapFS{
		"_partials.html": {Data: []byte(`{{define "header"}}{{end}}`)},
		"broken.html":    {Data: []byte(`{{if}}`)},
	}
	_, err := NewRenderer(fsys)
	assert.ErrorContains(t, err, "broken.html")
}
