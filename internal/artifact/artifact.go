// Package artifact reads and writes the pipeline's JSON output files. Writes
// are whole-file and atomic; partially refreshed artifacts never reach disk.
package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/model"
)

// ReadJSON decodes the artifact at path into out.
func ReadJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "artifact: read %s", path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "artifact: decode %s", path)
	}
	return nil
}

// WriteJSON writes v to path via a temp file rename.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "artifact: create dir for %s", path)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "artifact: encode %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return eris.Wrapf(err, "artifact: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "artifact: rename %s", path)
	}
	zap.L().Info("artifact written", zap.String("path", path), zap.Int("bytes", len(raw)))
	return nil
}

// ReadCatalog loads the catalog artifact.
func ReadCatalog(path string) ([]model.Minifig, error) {
	var catalog []model.Minifig
	if err := ReadJSON(path, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// ReadPrices loads the price artifact. A missing file yields an empty map so
// the first price run starts from nothing.
func ReadPrices(path string) (model.PriceMap, error) {
	prices := model.PriceMap{}
	err := ReadJSON(path, &prices)
	if err != nil && os.IsNotExist(eris.Cause(err)) {
		return model.PriceMap{}, nil
	}
	if err != nil {
		return nil, err
	}
	return prices, nil
}
