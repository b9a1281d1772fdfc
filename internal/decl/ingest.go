package decl

import (
	"fmt"
	"sync"

	"github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/internal/parser"
	"github.com/tobsdb/pcddb/pkg"
)

// Ingest feeds every declaration of p into m in module order, then records
// the platform overrides. It stops at the first failure.
func Ingest(m *database.Manager, p *Platform) error {
	for i := range p.Modules {
		if err := ingestModule(m, &p.Modules[i]); err != nil {
			return err
		}
	}
	return applyOverrides(m, p)
}

// IngestParallel is Ingest with up to workers modules declared at once.
// The manager serialises the declarations; when several modules fail, the
// error of the first one in module order is returned.
func IngestParallel(m *database.Manager, p *Platform, workers int) error {
	if workers < 1 {
		workers = 1
	}

	errs := make([]error, len(p.Modules))
	jobs := make(chan int)
	wg := sync.WaitGroup{}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = ingestModule(m, &p.Modules[i])
			}
		}()
	}
	for i := range p.Modules {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return applyOverrides(m, p)
}

func ingestModule(m *database.Manager, msa *ModuleSurfaceArea) error {
	decls, err := msa.Declarations()
	if err != nil {
		return err
	}
	for _, d := range decls {
		if err := m.Declare(d); err != nil {
			return err
		}
	}
	pkg.DebugLog("ingested module", msa.Name, "with", len(decls), "declarations")
	return nil
}

func applyOverrides(m *database.Manager, p *Platform) error {
	for _, o := range p.Overrides {
		space, c_name, err := parser.ParseTokenName(o.Token)
		if err != nil {
			return fmt.Errorf("Override: %w", err)
		}
		if err := m.SetPlatformDefault(space, c_name, o.Value); err != nil {
			return err
		}
	}
	return nil
}
