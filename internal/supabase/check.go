package supabase

import (
	"context"
	"fmt"
	"net/http"
)

// TargetStatus is the check result for one REST target.
type TargetStatus struct {
	Target     string
	StatusCode int
	Rows       int // -1 when the body is not a row array
	Err        error
}

// OK reports a 200 response.
func (s TargetStatus) OK() bool {
	return s.Err == nil && s.StatusCode == http.StatusOK
}

// Check requests the REST root and each poetry collection.
// The root goes first; collections are checked even when it fails.
func Check(ctx context.Context, b Backend) []TargetStatus {
	targets := []string{"", TableDynasties, TablePoets, TablePoems}
	results := make([]TargetStatus, 0, len(targets))

	for _, target := range targets {
		resp := b.Request(ctx, http.MethodGet, target, nil)
		status := TargetStatus{
			Target:     target,
			StatusCode: resp.StatusCode,
			Rows:       -1,
			Err:        resp.Err,
		}
		if status.Err == nil && resp.StatusCode != http.StatusOK {
			status.Err = fmt.Errorf("status %d: %s", resp.StatusCode, resp.Text())
		}
		if target != "" && status.Err == nil {
			if rows, err := resp.Rows(); err == nil {
				status.Rows = len(rows)
			}
		}
		if target == "" {
			status.Target = "/"
		}
		results = append(results, status)
	}

	return results
}
