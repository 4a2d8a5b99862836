package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/mission-scraper/internal/config"
	"github.com/JakeFAU/mission-scraper/internal/enricher"
	"github.com/JakeFAU/mission-scraper/internal/mission"
	"github.com/JakeFAU/mission-scraper/internal/table"
)

const apolloArticle = `<html><body><h1>Apollo 11</h1>
<table class="infobox"><tbody>
<tr><th>Launch date</th><td>July 16, 1969</td></tr>
<tr><th>Rocket</th><td>Saturn V</td></tr>
<tr><th>Launch site</th><td>Kennedy LC-39A</td></tr>
<tr><th>Mission duration</th><td>8 days</td></tr>
<tr><th>Landing site</th><td>North Pacific Ocean</td></tr>
</tbody></table>%s</body></html>`

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wiki/Apollo_11":
			fmt.Fprintf(w, apolloArticle, strings.Repeat("<p>filler</p>", 200))
		case "/w/api.php":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, serverURL string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("wiki:\n  base_url: %s/wiki/\n  api_url: %s/w/api.php\nrun:\n  sleep_seconds: 0\n", serverURL, serverURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScrapeCommandEnrichesTable(t *testing.T) {
	t.Parallel()

	srv := newWikiServer(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL)
	in := filepath.Join(dir, "missions.csv")
	out := filepath.Join(dir, "enriched.xlsx")
	require.NoError(t, os.WriteFile(in, []byte("Mission,Notes\n,\nApollo 11,first landing\n"), 0o600))

	stdout, err := execute(t, "scrape", "--config", cfgPath, "--csv", in, "--out", out, "--sleep", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Updated")
	assert.Contains(t, stdout, out)

	saved, err := table.Load(out)
	require.NoError(t, err)
	require.Equal(t, 2, saved.Len())
	assert.Empty(t, saved.Get(0, mission.ColumnSourceURL))
	assert.Equal(t, "first landing", saved.Get(1, "Notes"))
	assert.Equal(t, "Saturn V", saved.Get(1, mission.ColumnRocket))
	assert.Equal(t, "July 16, 1969", saved.Get(1, mission.ColumnLaunchDate))
	assert.Equal(t, srv.URL+"/wiki/Apollo_11", saved.Get(1, mission.ColumnSourceURL))

	// The input is untouched when --out points elsewhere.
	source, err := table.Load(in)
	require.NoError(t, err)
	assert.False(t, source.HasColumn(mission.ColumnRocket))

	_, err = os.Stat(out + ".lock")
	assert.ErrorIs(t, err, os.ErrNotExist, "lock file is removed after the run")
}

func TestScrapeCommandMissingInput(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.csv")
	_, err := execute(t, "scrape", "--csv", missing)
	require.ErrorIs(t, err, config.ErrInputNotFound)
	assert.Contains(t, err.Error(), "CSV not found: "+missing)
}

func TestScrapeCommandRefusesLockedOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "missions.csv")
	require.NoError(t, os.WriteFile(in, []byte("Mission\nApollo 11\n"), 0o600))

	lock, err := table.Acquire(in)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lock.Release() })

	_, err = execute(t, "scrape", "--csv", in)
	require.ErrorIs(t, err, table.ErrLocked)
}

func TestResolveCommand(t *testing.T) {
	t.Parallel()

	srv := newWikiServer(t)
	cfgPath := writeConfig(t, t.TempDir(), srv.URL)

	stdout, err := execute(t, "resolve", "--config", cfgPath, "Apollo 11", "Zond 99")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saturn V")
	assert.Contains(t, stdout, "Kennedy LC-39A")
	assert.Contains(t, stdout, srv.URL+"/wiki/Apollo_11")
	assert.Contains(t, stdout, "Zond 99")
	assert.NotContains(t, stdout, "ZOND 99")
	assert.Contains(t, stdout, "no mission page resolved")
}

func TestResolveCommandRequiresMission(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "resolve")
	require.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	got := renderSummary(enricher.Summary{Total: 3, Updated: 2, Interrupted: true, Output: "out.csv"})
	assert.Contains(t, got, "Updated")
	assert.Contains(t, got, "Interrupted")
	assert.Contains(t, got, "out.csv")

	assert.NotContains(t, renderSummary(enricher.Summary{}), "Interrupted")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestRenderTableKeepsHeaderCase(t *testing.T) {
	t.Parallel()

	got := renderTable([]string{"Mission", "Soyuz TMA-1"}, [][]string{{"Result", "ok"}}, nil)
	assert.Contains(t, got, "Mission")
	assert.Contains(t, got, "Soyuz TMA-1")
	assert.NotContains(t, got, "SOYUZ TMA-1")
}
