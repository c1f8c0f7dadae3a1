package sqlite

import (
	"go.uber.org/zap"
)

// ExportJSONL writes every table into dir as <table>.jsonl and returns the
// number of rows written per table. Existing files are replaced atomically.
func (b *Backend) ExportJSONL(dir string) (map[string]int, error) {
	db, err := b.DB()
	if err != nil {
		return nil, err
	}
	counts, err := exportJSONL(db, dir)
	if err != nil {
		return nil, err
	}
	b.logger.Info("exported database", zap.String("dir", dir), zap.Any("rows", counts))
	return counts, nil
}

// ImportJSONL loads <table>.jsonl files from dir. Rows whose id already
// exists keep their current values; missing files are treated as empty.
func (b *Backend) ImportJSONL(dir string) ([]ImportResult, error) {
	db, err := b.DB()
	if err != nil {
		return nil, err
	}
	results, err := loadAllJSONL(db, dir)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if res.Read == 0 {
			continue
		}
		b.logger.Info("imported table",
			zap.String("table", res.Table),
			zap.Int("read", res.Read),
			zap.Int("inserted", res.Inserted),
			zap.Int("skipped", res.Skipped),
			zap.Int("orphans", res.Orphans),
		)
	}
	return results, nil
}
