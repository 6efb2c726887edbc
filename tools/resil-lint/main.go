// resil-lint is a custom static analyzer for resilience-core conventions.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/resilience-core/tools/resil-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
