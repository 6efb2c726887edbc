// Package globalrand detects draws from the package-level math/rand source.
package globalrand

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports calls such as rand.Float64() that bypass an injected
// random source. Seeded runs must be reproducible.
var Analyzer = &analysis.Analyzer{
	Name:     "globalrand",
	Doc:      "detects draws from the global math/rand source instead of an injected one",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var randPackages = map[string]bool{
	"math/rand":    true,
	"math/rand/v2": true,
}

// constructors build a source and are the way to get an injectable one.
var constructors = map[string]bool{
	"New":        true,
	"NewSource":  true,
	"NewZipf":    true,
	"NewPCG":     true,
	"NewChaCha8": true,
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}

		fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
		if !ok || fn.Pkg() == nil || !randPackages[fn.Pkg().Path()] {
			return
		}
		if sig, ok := fn.Type().(*types.Signature); !ok || sig.Recv() != nil {
			return
		}
		if constructors[fn.Name()] {
			return
		}

		pass.Reportf(call.Pos(), "rand.%s uses the global source - draw from an injected source", fn.Name())
	})

	return nil, nil
}
