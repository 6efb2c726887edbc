// Package loopcall detects per-item calls to remote services inside loops.
package loopcall

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects embedding, index and LLM calls inside loops.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "detects embedding, scenario index and LLM calls inside loops that should be batched",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// remoteMethods maps single-item methods of the remote ports to the call
// that should replace them.
var remoteMethods = map[string]string{
	// Embedder
	"Embed": "EmbedBatch",
	// ScenarioIndex
	"SearchScenarios": "",
	// Briefer
	"BriefScenario": "",
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			// Closures run later, not once per iteration.
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			method := sel.Sel.Name
			batch, ok := remoteMethods[method]
			if !ok {
				return true
			}
			if batch != "" {
				pass.Reportf(call.Pos(), "%s called inside loop - use %s", method, batch)
			} else {
				pass.Reportf(call.Pos(), "%s called inside loop - one remote call per item", method)
			}

			return true
		})
	})

	return nil, nil
}
