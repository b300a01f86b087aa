// Package importer drives a CSV import: it reads the file, resolves each row's
// dynasty and poet, inserts the poem and summarizes the run.
package importer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/palemoky/poetry-importer/internal/classifier"
	apperrors "github.com/palemoky/poetry-importer/internal/errors"
	"github.com/palemoky/poetry-importer/internal/loader"
	"github.com/palemoky/poetry-importer/internal/logger"
	"github.com/palemoky/poetry-importer/internal/resolver"
	"github.com/palemoky/poetry-importer/internal/supabase"
)

// Stage is the position of an import run.
type Stage int32

const (
	StageInit Stage = iota
	StageReading
	StageProcessing
	StageSummarizing
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageReading:
		return "reading"
	case StageProcessing:
		return "processing"
	case StageSummarizing:
		return "summarizing"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("Stage(%d)", int32(s))
	}
}

// Options configures an Importer.
type Options struct {
	// Workers > 1 processes rows concurrently; 1 keeps file order.
	Workers int
	// Convert is a classifier conversion mode applied to every field.
	Convert string
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
	// Now stamps created_at; defaults to time.Now.
	Now func() time.Time
}

// Importer imports poems into a backend. A single Importer serves one run at a time.
type Importer struct {
	backend  supabase.Backend
	resolver *resolver.Resolver
	opts     Options
	stage    atomic.Int32
}

// New creates an importer.
func New(b supabase.Backend, opts Options) *Importer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Importer{
		backend:  b,
		resolver: resolver.New(b),
		opts:     opts,
	}
}

// Stage returns the current stage.
func (im *Importer) Stage() Stage {
	return Stage(im.stage.Load())
}

func (im *Importer) setStage(s Stage) {
	im.stage.Store(int32(s))
	logger.Debug("Import stage", zap.Stringer("stage", s))
}

// ImportFile reads the CSV at path and imports every row.
// Only a file that cannot be read is an error; row failures are counted in the summary.
func (im *Importer) ImportFile(ctx context.Context, path string) (Summary, error) {
	im.setStage(StageReading)
	rows, err := loader.LoadCSV(path)
	if err != nil {
		im.setStage(StageDone)
		return Summary{}, err
	}
	logger.Info(fmt.Sprintf("读取到 %d 首诗歌数据", len(rows)), zap.String("file", path))

	return im.Run(ctx, rows), nil
}

// counters accumulates row outcomes.
type counters struct {
	imported   atomic.Int64
	failed     atomic.Int64
	dispatched atomic.Int64
}

// Run imports rows. Each row is attempted exactly once; a failed row is
// logged and counted, then the next row is processed. Ids cached by an
// earlier run are looked up again.
func (im *Importer) Run(ctx context.Context, rows []loader.Row) Summary {
	im.resolver.ClearCache()
	im.setStage(StageProcessing)
	logger.Info("开始导入古诗词数据...", zap.Int("rows", len(rows)), zap.Int("workers", im.opts.Workers))

	var progress *mpb.Progress
	var bar *mpb.Bar
	if im.opts.Progress != nil && len(rows) > 0 {
		progress, bar = newProgress(im.opts.Progress, len(rows))
	}

	var c counters
	handle := func(line int, row loader.Row) {
		im.handleRow(ctx, line, row, &c)
		if bar != nil {
			bar.Increment()
		}
	}

	if im.opts.Workers == 1 {
		im.runSequential(ctx, rows, &c, handle)
	} else {
		im.runConcurrent(ctx, rows, &c, handle)
	}

	skipped := len(rows) - int(c.dispatched.Load())
	if progress != nil {
		if skipped > 0 {
			bar.Abort(false)
		}
		progress.Wait()
	}

	im.setStage(StageSummarizing)
	stats := im.resolver.Stats()
	summary := Summary{
		Total:            len(rows),
		Imported:         int(c.imported.Load()),
		Failed:           int(c.failed.Load()),
		Skipped:          skipped,
		DynastiesCreated: int(stats.DynastiesCreated),
		PoetsCreated:     int(stats.PoetsCreated),
		Fallbacks:        int(stats.Fallbacks),
	}
	logger.Info("导入完成",
		zap.Int("imported", summary.Imported),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("dynasties_created", summary.DynastiesCreated),
		zap.Int("poets_created", summary.PoetsCreated),
		zap.Int("fallbacks", summary.Fallbacks),
	)
	im.setStage(StageDone)

	return summary
}

func (im *Importer) runSequential(ctx context.Context, rows []loader.Row, c *counters, handle func(int, loader.Row)) {
	for i, row := range rows {
		if ctx.Err() != nil {
			logger.Warn("Import cancelled", zap.Int("remaining", len(rows)-i))
			return
		}
		c.dispatched.Add(1)
		handle(i+1, row)
	}
}

type job struct {
	index int
	row   loader.Row
}

func (im *Importer) runConcurrent(ctx context.Context, rows []loader.Row, c *counters, handle func(int, loader.Row)) {
	workCh := make(chan job, im.opts.Workers)
	var wg sync.WaitGroup

	for i := 0; i < im.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range workCh {
				handle(j.index, j.row)
			}
		}()
	}

dispatch:
	for i, row := range rows {
		select {
		case <-ctx.Done():
			logger.Warn("Import cancelled", zap.Int("remaining", len(rows)-i))
			break dispatch
		case workCh <- job{index: i + 1, row: row}:
			c.dispatched.Add(1)
		}
	}
	close(workCh)
	wg.Wait()
}

func (im *Importer) handleRow(ctx context.Context, index int, row loader.Row, c *counters) {
	title := row.Title()
	log := logger.With(zap.Int("row", index), zap.Int("line", row.Line), zap.String("title", title))
	log.Info(fmt.Sprintf("处理第 %d 首诗歌: %s", index, title))

	if err := im.processRow(ctx, row); err != nil {
		c.failed.Add(1)
		log.Error("✗ 导入失败",
			zap.String("code", string(apperrors.CodeOf(err))),
			zap.Error(err),
		)
		return
	}

	c.imported.Add(1)
	log.Info("✓ 成功导入")
}

func (im *Importer) processRow(ctx context.Context, row loader.Row) error {
	if err := row.Validate(); err != nil {
		return err
	}

	fields, err := im.extractFields(row)
	if err != nil {
		return err
	}

	dynastyID := im.resolver.Dynasty(ctx, fields.Dynasty)
	if dynastyID == "" {
		return apperrors.Resolve("朝代", fields.Dynasty)
	}

	poetID := im.resolver.Poet(ctx, fields.Poet, dynastyID)
	if poetID == "" {
		return apperrors.Resolve("诗人", fields.Poet)
	}

	record := newPoemRecord(fields, poetID, dynastyID, im.opts.Now())

	resp := supabase.Insert(ctx, im.backend, supabase.TablePoems, record)
	if resp.Err != nil {
		return apperrors.Transport(resp.Err)
	}
	if !resp.Created() {
		return apperrors.Backend(resp.StatusCode, resp.Text())
	}
	return nil
}

func (im *Importer) extractFields(row loader.Row) (poemFields, error) {
	get := func(column string) (string, error) {
		v, _ := row.Get(column)
		if column == loader.ColumnContent {
			v = classifier.NormalizeContent(v)
		} else {
			v = classifier.NormalizeText(v)
		}
		converted, err := classifier.Convert(v, im.opts.Convert)
		if err != nil {
			return "", apperrors.MalformedRow(row.Line, fmt.Sprintf("failed to convert %s: %v", column, err))
		}
		return converted, nil
	}

	var f poemFields
	var err error
	targets := []struct {
		column string
		dst    *string
	}{
		{loader.ColumnTitle, &f.Title},
		{loader.ColumnDynasty, &f.Dynasty},
		{loader.ColumnPoet, &f.Poet},
		{loader.ColumnContent, &f.Content},
		{loader.ColumnCategory, &f.Category},
	}
	for _, t := range targets {
		if *t.dst, err = get(t.column); err != nil {
			return poemFields{}, err
		}
	}
	return f, nil
}

func newProgress(w io.Writer, total int) (*mpb.Progress, *mpb.Bar) {
	progress := mpb.New(
		mpb.WithOutput(w),
		mpb.WithWidth(60),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	bar := progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Importing: ", decor.WC{W: 11, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Name(" | "),
			decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}),
			decor.Name(" | "),
			decor.AverageSpeed(0, "%.1f poems/s", decor.WC{W: 12}),
		),
	)
	return progress, bar
}
