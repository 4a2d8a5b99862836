// Package app_test contains unit tests for the app package.
package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-scraper/internal/app"
	"github.com/JakeFAU/mission-scraper/internal/config"
	"github.com/JakeFAU/mission-scraper/internal/metrics"
	"github.com/JakeFAU/mission-scraper/internal/mission"
	"github.com/JakeFAU/mission-scraper/internal/table"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.Wiki.BaseURL = baseURL + "/wiki/"
	cfg.Wiki.APIURL = baseURL + "/w/api.php"
	cfg.Run.SleepSeconds = 0
	return cfg
}

func TestNewApp(t *testing.T) {
	t.Parallel()

	a, err := app.New(testConfig(t, "https://wiki.test"), zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, a.RunID(), 36)
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Metrics())
	assert.NotNil(t, a.Resolver())
	assert.NotNil(t, a.Extractor())
	assert.Equal(t, "https://wiki.test/wiki/", a.Config().Wiki.BaseURL)
	require.NoError(t, a.Close())
}

func TestAppEnrichesAgainstLiveServer(t *testing.T) {
	t.Parallel()

	var (
		mu         sync.Mutex
		userAgents []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		userAgents = append(userAgents, r.UserAgent())
		mu.Unlock()
		if r.URL.Path != "/wiki/Apollo_11" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body><h1>Apollo 11</h1>
<table class="infobox"><tbody>
<tr><th>Rocket</th><td>Saturn V</td></tr>
<tr><th>Launch site</th><td>Kennedy LC-39A</td></tr>
</tbody></table>` + strings.Repeat("<p>lorem ipsum</p>", 200) + `</body></html>`))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	out := filepath.Join(dir, "missions.csv")
	metricsPath := filepath.Join(dir, "mission.prom")

	cfg := testConfig(t, srv.URL)
	cfg.Metrics.Textfile = metricsPath
	a, err := app.New(cfg, zap.NewNop())
	require.NoError(t, err)

	tbl := table.New([]string{mission.ColumnMission}, [][]string{{"Apollo 11"}})
	summary, err := a.Enricher(table.NewFile(out)).Run(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	require.NoError(t, a.Close())

	saved, err := table.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "Saturn V", saved.Get(0, mission.ColumnRocket))
	assert.Equal(t, srv.URL+"/wiki/Apollo_11", saved.Get(0, mission.ColumnSourceURL))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, userAgents)
	assert.Equal(t, config.DefaultUserAgent, userAgents[0])

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `mission_scraper_rows_total{outcome="`+metrics.RowUpdated+`"} 1`)
}
