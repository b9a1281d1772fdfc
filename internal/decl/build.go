package decl

import (
	"context"

	"github.com/tobsdb/pcddb/internal/database"
)

// Build runs one build pass: load the sources, ingest them into a new
// manager and resolve it. workers > 1 ingests modules in parallel.
func Build(ctx context.Context, workers int, URLs ...string) (*database.Manager, error) {
	platform, err := NewLoader().LoadAll(ctx, URLs...)
	if err != nil {
		return nil, err
	}

	m := database.NewManager()
	if workers > 1 {
		err = IngestParallel(m, platform, workers)
	} else {
		err = Ingest(m, platform)
	}
	if err != nil {
		return nil, err
	}

	if err := m.Resolve(); err != nil {
		return nil, err
	}
	return m, nil
}
