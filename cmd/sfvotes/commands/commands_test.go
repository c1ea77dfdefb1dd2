package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sfvotes/internal/components/sqliteutil"
	"sfvotes/internal/legistar"
	"sfvotes/internal/legistar/legistartest"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sfvotes.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// the rest comes from defaults
		requests_per_second: 0.5,
		cloudflare_bypass: false,
	}`), 0600))

	config, err := loadConfig(path, "")
	require.NoError(t, err)
	require.Equal(t, "https://sfgov.legistar.com", config.BaseUrl)
	require.Equal(t, "vote_db.sqlite", config.Database.File)
	require.NotNil(t, config.RequestsPerSecond)
	require.Equal(t, 0.5, *config.RequestsPerSecond)
	require.Equal(t, 30, config.RequestTimeoutSeconds)
	require.Equal(t, legistar.DefaultMaxExpansions, config.MaxPagerExpansions)
	require.NotNil(t, config.CloudflareBypass)
	require.False(t, *config.CloudflareBypass)
	require.False(t, config.Telemetry.Enabled())

	config, err = loadConfig(path, filepath.Join(dir, "other.sqlite"))
	require.NoError(t, err)
	require.Equal(t, sqliteutil.Config{File: filepath.Join(dir, "other.sqlite")}, config.Database)

	_, err = loadConfig(filepath.Join(dir, "missing.json5"), "")
	require.Error(t, err)
}

func TestLoadConfigDisablesPacing(t *testing.T) {
	dir := t.TempDir()
	unpaced := filepath.Join(dir, "unpaced.json5")
	require.NoError(t, os.WriteFile(unpaced, []byte(`{ requests_per_second: 0 }`), 0600))
	paced := filepath.Join(dir, "paced.json5")
	require.NoError(t, os.WriteFile(paced, []byte(`{ settle_delay_ms: 250 }`), 0600))

	config, err := loadConfig(unpaced, "")
	require.NoError(t, err)
	require.NotNil(t, config.RequestsPerSecond)
	require.Equal(t, 0.0, *config.RequestsPerSecond)
	require.Equal(t, 0.0, config.sessionOptions("").RequestsPerSecond)

	config, err = loadConfig(paced, "")
	require.NoError(t, err)
	require.Equal(t, 2.0, config.sessionOptions("").RequestsPerSecond)
	require.Equal(t, 250*time.Millisecond, config.settleDelay())
}

func TestCrawlAndSummary(t *testing.T) {
	site := &legistartest.Site{
		Legislators: []string{"Alice", "Bob"},
		Years: map[int][]legistartest.VoteRow{
			2020: {
				{FileNumber: 100, Date: "01/15/2020", Votes: map[string]string{"Alice": "Aye", "Bob": "No"}},
				{FileNumber: 101, Date: "03/10/2020", Votes: map[string]string{"Alice": "Aye"}},
			},
		},
	}
	server := legistartest.Serve(t, site)

	dir := t.TempDir()
	bypass := false
	config, err := loadConfig("", "")
	require.NoError(t, err)
	config.BaseUrl = server.URL
	config.Database = sqliteutil.Config{File: filepath.Join(dir, "votes.sqlite")}
	unpaced := 0.0
	config.RequestsPerSecond = &unpaced
	config.CloudflareBypass = &bypass

	ctx := context.Background()
	dump := filepath.Join(dir, "dump")
	stats, err := runCrawl(ctx, config, 2020, 2020, dump)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Votes)

	entries, err := os.ReadDir(filepath.Join(dump, "listing"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	entries, err = os.ReadDir(filepath.Join(dump, "detail"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var out bytes.Buffer
	renderStats(&out, stats)
	require.Contains(t, out.String(), stats.CrawlID)

	out.Reset()
	require.NoError(t, runSummary(ctx, config, &out, "0000-01-01", "9999-12-31"))
	lines := strings.Split(out.String(), "\n")
	require.True(t, containsLine(lines, "Alice", "2", "0"), out.String())
	require.True(t, containsLine(lines, "Bob", "0", "1"), out.String())

	out.Reset()
	require.NoError(t, runSummary(ctx, config, &out, "2020-02-01", "9999-12-31"))
	lines = strings.Split(out.String(), "\n")
	require.True(t, containsLine(lines, "Alice", "1", "0"), out.String())
	require.False(t, containsLine(lines, "Bob"), out.String())
}

func containsLine(lines []string, fields ...string) bool {
	for _, line := range lines {
		cells := strings.FieldsFunc(line, func(r rune) bool {
			return r == '│' || r == ' '
		})
		if len(cells) < len(fields) {
			continue
		}
		match := true
		for i, field := range fields {
			if cells[i] != field {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
