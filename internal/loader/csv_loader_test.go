package loader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/palemoky/poetry-importer/internal/errors"
)

const header = "诗歌名称,朝代,作者,诗歌正文,诗歌分类\n"

func TestReadCSV(t *testing.T) {
	input := header +
		"静夜思,唐,李白,床前明月光，疑是地上霜。举头望明月，低头思故乡。,思乡诗\n" +
		"\"春晓\",唐,孟浩然,\"春眠不觉晓，\n处处闻啼鸟。\",山水诗\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "静夜思", rows[0].Title())
	dynasty, ok := rows[0].Get(ColumnDynasty)
	assert.True(t, ok)
	assert.Equal(t, "唐", dynasty)
	assert.NoError(t, rows[0].Validate())

	assert.Equal(t, 3, rows[1].Line)
	content, _ := rows[1].Get(ColumnContent)
	assert.Equal(t, "春眠不觉晓，\n处处闻啼鸟。", content)
}

func TestReadCSVBareQuoteKeepsRest(t *testing.T) {
	input := header +
		"静夜思,唐,李白,床前明月光,思乡诗\n" +
		"无题,唐,李商隐,他说\"好\"吧,抒情诗\n" +
		"春望,唐,杜甫,国破山河在,爱国诗\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	content, _ := rows[1].Get(ColumnContent)
	assert.Equal(t, "他说\"好\"吧", content)
	category, _ := rows[1].Get(ColumnCategory)
	assert.Equal(t, "抒情诗", category)
	for _, row := range rows {
		assert.NoError(t, row.Validate())
	}
	assert.Equal(t, "春望", rows[2].Title())
}

func TestParseErrorRow(t *testing.T) {
	row := parseErrorRow(&csv.ParseError{StartLine: 4, Line: 5, Column: 2, Err: csv.ErrQuote})

	assert.Equal(t, 4, row.Line)
	assert.Empty(t, row.Title())
	err := row.Validate()
	assert.ErrorIs(t, err, apperrors.ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 4")
}

func TestReadCSVStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBF" + header + "静夜思,唐,李白,床前明月光,思乡诗\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "静夜思", rows[0].Title())
	assert.NoError(t, rows[0].Validate())
}

func TestReadCSVShortRecord(t *testing.T) {
	input := header + "静夜思,唐,李白\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	err = rows[0].Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedRow)
	assert.Contains(t, err.Error(), ColumnContent)
	assert.Contains(t, err.Error(), ColumnCategory)
}

func TestReadCSVMissingHeaderColumn(t *testing.T) {
	input := "诗歌名称,朝代,作者,诗歌正文\n静夜思,唐,李白,床前明月光\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.ErrorIs(t, rows[0].Validate(), apperrors.ErrMalformedRow)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	rows, err := ReadCSV(strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "古诗词.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"静夜思,唐,李白,床前明月光,思乡诗\n"), 0o600))

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
