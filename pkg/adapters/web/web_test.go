package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/adapters/web"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflow = `{
  "workflow": {
    "startStep": "welcome",
    "steps": {
      "welcome": {
        "title": "Welcome",
        "contentFile": "fragments/welcome.html",
        "actions": [{"label": "Next", "nextStep": "broken"}]
      },
      "broken": {"title": "Broken", "contentFile": "fragments/missing.html"}
    }
  }
}`

func newOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/guide/workflow_config.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(workflow))
	})
	mux.HandleFunc("/guide/fragments/welcome.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>Hello from the web.</p>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestConfigSource_Load(t *testing.T) {
	srv := newOrigin(t)
	source, err := web.NewConfigSource(srv.URL + "/guide/workflow_config.json")
	require.NoError(t, err)

	data, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"startStep": "welcome"`)
	assert.Equal(t, srv.URL+"/guide/", source.BaseURL())

	missing, err := web.NewConfigSource(srv.URL + "/nope.json")
	require.NoError(t, err)
	_, err = missing.Load(context.Background())
	assert.ErrorIs(t, err, web.ErrStatus)
}

func TestConfigSource_RejectsNonHTTP(t *testing.T) {
	_, err := web.NewConfigSource("file:///etc/passwd")
	assert.Error(t, err)
}

func TestFetcher(t *testing.T) {
	srv := newOrigin(t)
	fetcher, err := web.NewFetcher(srv.URL + "/guide/")
	require.NoError(t, err)

	got, err := fetcher.Fetch(context.Background(), "fragments/welcome.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello from the web.</p>", got)

	_, err = fetcher.Fetch(context.Background(), "fragments/missing.html")
	assert.ErrorIs(t, err, domain.ErrFragmentFetch)

	_, err = fetcher.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrFragmentFetch)

	_, err = web.NewFetcher("relative/")
	assert.Error(t, err)
}

func TestEngineOverHTTP(t *testing.T) {
	srv := newOrigin(t)
	source, err := web.NewConfigSource(srv.URL + "/guide/workflow_config.json")
	require.NoError(t, err)
	fetcher, err := web.NewFetcher(source.BaseURL())
	require.NoError(t, err)

	eng, err := walkthrough.New(source,
		walkthrough.WithFetcher(fetcher),
		walkthrough.WithSleeper(location.NoSleep),
	)
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))
	assert.Contains(t, eng.View().Text, "Hello from the web.")

	require.NoError(t, eng.Activate(context.Background(), "Next"))
	view := eng.View()
	assert.Equal(t, "broken", view.StepID)
	assert.Equal(t, "Broken", view.Title)
	assert.Empty(t, view.Text, "a failed fragment leaves the body empty")
	assert.False(t, view.Error)
}
