package runtime

import (
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/ports"
)

// CollectDiagnostics reads the store's error subtree.
//
// Every node matching domain.ErrorPattern is one report; its value is the
// error category. When errorType is set, reports of another category are
// skipped, while reports without a category are always kept. The fields of a
// report are its direct children. Lookup failures are ignored: diagnostics are
// best effort and never replace the error being reported.
func CollectDiagnostics(store ports.TreeStore, errorType string) domain.Diagnostics {
	diag := domain.Diagnostics{ErrorType: errorType}

	paths, err := store.Match(domain.ErrorPattern)
	if err != nil {
		return diag
	}

	for _, p := range paths {
		typ, _, err := store.Get(p)
		if err != nil {
			continue
		}
		if errorType != "" && typ != "" && typ != errorType {
			continue
		}

		report := domain.Diagnostic{Path: p, Type: typ}
		fields, err := store.Match(p + "/*")
		if err != nil {
			continue
		}
		for _, f := range fields {
			value, _, _ := store.Get(f)
			report.Fields = append(report.Fields, domain.DiagnosticField{Path: f, Value: value})
		}
		diag.Reports = append(diag.Reports, report)
	}
	return diag
}
