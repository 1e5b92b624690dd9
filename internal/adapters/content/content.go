// Package content loads the static model roster and joke catalog that
// seed the arena. Both are read once at startup and treated as immutable.
package content

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/okian/arena/internal/domain/model"
)

// LoadRoster reads the ordered model list from a CSV file. The first
// column of every non-empty row is a model id; order defines the seeding
// order of the rating store.
func LoadRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoster, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRoster, path, err)
	}

	roster := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if name := strings.TrimSpace(row[0]); name != "" {
			roster = append(roster, name)
		}
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: %s: no models listed", ErrRoster, path)
	}
	return roster, nil
}

// LoadCatalog reads the model -> category -> jokes mapping from JSON.
func LoadCatalog(path string) (model.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalog, err)
	}

	var catalog model.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalog, path, err)
	}
	return catalog, nil
}
