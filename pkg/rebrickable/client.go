package rebrickable

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/fetcher"
)

// Config configures the Rebrickable client.
type Config struct {
	CDNBaseURL  string `mapstructure:"cdn_base_url"`
	SiteBaseURL string `mapstructure:"site_base_url"`
}

// Client downloads CSV dumps from the Rebrickable CDN and fetches minifig
// detail pages from the site.
type Client struct {
	fetcher fetcher.Fetcher
	cfg     Config
}

// NewClient creates a Rebrickable client.
func NewClient(f fetcher.Fetcher, cfg Config) *Client {
	return &Client{fetcher: f, cfg: cfg}
}

// DownloadTables fetches all five CSV dumps into cacheDir (files already
// present are reused) and decodes them.
func (c *Client) DownloadTables(ctx context.Context, cacheDir string) (*Tables, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "rebrickable: create cache dir %s", cacheDir)
	}

	for _, name := range []string{"themes", "minifigs", "sets", "inventories", "inventory_minifigs"} {
		dest := filepath.Join(cacheDir, name+".csv.gz")
		if _, err := os.Stat(dest); err == nil {
			zap.L().Debug("rebrickable: using cached dump", zap.String("table", name))
			continue
		}
		url := fmt.Sprintf("%s/media/downloads/%s.csv.gz", c.cfg.CDNBaseURL, name)
		zap.L().Info("rebrickable: downloading dump", zap.String("table", name), zap.String("url", url))
		if _, err := c.fetcher.DownloadToFile(ctx, url, dest); err != nil {
			return nil, eris.Wrapf(err, "rebrickable: download %s", name)
		}
	}

	var t Tables
	var err error
	if t.Themes, err = decodeTableFile[ThemeRow](filepath.Join(cacheDir, "themes.csv.gz")); err != nil {
		return nil, err
	}
	if t.Minifigs, err = decodeTableFile[MinifigRow](filepath.Join(cacheDir, "minifigs.csv.gz")); err != nil {
		return nil, err
	}
	if t.Sets, err = decodeTableFile[SetRow](filepath.Join(cacheDir, "sets.csv.gz")); err != nil {
		return nil, err
	}
	if t.Inventories, err = decodeTableFile[InventoryRow](filepath.Join(cacheDir, "inventories.csv.gz")); err != nil {
		return nil, err
	}
	if t.InventoryMinifigs, err = decodeTableFile[InventoryMinifigRow](filepath.Join(cacheDir, "inventory_minifigs.csv.gz")); err != nil {
		return nil, err
	}
	return &t, nil
}

// MinifigURL returns the public detail page URL for a fig number.
func (c *Client) MinifigURL(figNum string) string {
	return fmt.Sprintf("%s/minifigs/%s/", c.cfg.SiteBaseURL, figNum)
}

// MinifigPage fetches the raw HTML of a minifig detail page.
func (c *Client) MinifigPage(ctx context.Context, figNum string) (string, error) {
	return c.fetcher.FetchText(ctx, c.MinifigURL(figNum))
}

// decodeTableFile gunzips and decodes one CSV dump. Rows that fail to decode
// are skipped and counted, not fatal.
func decodeTableFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rebrickable: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, eris.Wrapf(err, "rebrickable: gunzip %s", path)
	}
	defer gz.Close() //nolint:errcheck

	rows, skipped, err := DecodeTable[T](gz)
	if err != nil {
		return nil, eris.Wrapf(err, "rebrickable: decode %s", path)
	}
	if skipped > 0 {
		zap.L().Warn("rebrickable: skipped malformed rows",
			zap.String("file", filepath.Base(path)),
			zap.Int("skipped", skipped),
		)
	}
	return rows, nil
}

// DecodeTable decodes header-keyed CSV into row structs. Returns the decoded
// rows and the count of malformed rows that were skipped.
func DecodeTable[T any](r io.Reader) ([]T, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, 0, eris.Wrap(err, "csv header")
	}

	var rows []T
	skipped := 0
	for {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}
