package importer

import (
	"fmt"
	"io"
)

// Summary is the outcome of an import run.
type Summary struct {
	Total    int
	Imported int
	Failed   int
	// Skipped rows were never attempted because the run was cancelled.
	Skipped int

	DynastiesCreated int
	PoetsCreated     int
	Fallbacks        int
}

// Print writes the run summary.
func (s Summary) Print(w io.Writer) error {
	lines := []string{
		"",
		"导入完成!",
		fmt.Sprintf("成功导入: %d 首", s.Imported),
		fmt.Sprintf("导入失败: %d 首", s.Failed),
	}
	if s.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("未处理: %d 首", s.Skipped))
	}
	lines = append(lines, fmt.Sprintf("总计处理: %d 首", s.Total))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
