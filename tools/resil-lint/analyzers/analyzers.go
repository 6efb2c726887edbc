// Package analyzers provides all custom static analyzers for resilience-core.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/resilience-core/tools/resil-lint/analyzers/globalrand"
	"github.com/ersonp/resilience-core/tools/resil-lint/analyzers/loopcall"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		globalrand.Analyzer,
		loopcall.Analyzer,
	}
}
