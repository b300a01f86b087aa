package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/palemoky/poetry-importer/internal/errors"
	"github.com/palemoky/poetry-importer/internal/logger"
	"github.com/palemoky/poetry-importer/internal/supabase"
	"github.com/palemoky/poetry-importer/internal/testutil"
)

func setupCommand(t *testing.T, backend *testutil.FakeBackend, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	for _, k := range []string{"SUPABASE_URL", "SUPABASE_KEY", "VITE_SUPABASE_URL", "VITE_SUPABASE_ANON_KEY"} {
		t.Setenv(k, "")
	}
	if backend != nil {
		t.Setenv("SUPABASE_URL", backend.Server.URL)
		t.Setenv("SUPABASE_KEY", testutil.TestKey)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "absent.env")}, args...))
	return &out, cmd.Execute()
}

func TestImportCommand(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	csvPath := filepath.Join(t.TempDir(), "poems.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"诗歌名称,朝代,作者,诗歌正文,诗歌分类\n"+
			"静夜思,唐,李白,床前明月光,思乡诗\n"+
			"春望,唐,杜甫,国破山河在,爱国诗\n"), 0o600))

	out, err := setupCommand(t, backend, "--csv", csvPath, "--workers", "2")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "导入完成!")
	assert.Contains(t, out.String(), "成功导入: 2 首")
	assert.Equal(t, 2, backend.Count(t, supabase.TablePoems))
	assert.Equal(t, testutil.TestKey, backend.LastHeaders().Get("apikey"))
}

func TestImportCommandMissingConfig(t *testing.T) {
	_, err := setupCommand(t, nil)
	assert.ErrorIs(t, err, apperrors.ErrMissingConfig)
}

func TestImportCommandInvalidFlag(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	_, err := setupCommand(t, backend, "--convert", "x2y")
	assert.Error(t, err)
	assert.Equal(t, 0, backend.Requests(http.MethodGet, supabase.TableDynasties))
}

func TestDebugFlagEnablesDebugLogging(t *testing.T) {
	logger.Init(false)
	t.Cleanup(func() { logger.Init(false) })

	backend := testutil.NewFakeBackend(t)
	_, err := setupCommand(t, backend, "--debug", "check")
	require.NoError(t, err)

	assert.True(t, logger.L.Core().Enabled(zap.DebugLevel))
}

func TestCheckCommand(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.Seed(t, supabase.TableDynasties, map[string]any{"name": "唐"})

	out, err := setupCommand(t, backend, "check")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "dynasties")
	assert.Contains(t, out.String(), "✓ 连接正常")
}

func TestCheckCommandForbidden(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.FailSelects(supabase.TablePoems, http.StatusForbidden)

	out, err := setupCommand(t, backend, "check")
	require.Error(t, err)

	assert.Contains(t, out.String(), "✗ 403")
	assert.Contains(t, out.String(), "RLS")
}
