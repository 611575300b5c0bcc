package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/utm/internal/testutils"
	"github.com/aretw0/utm/pkg/adapters/file"
	"github.com/aretw0/utm/pkg/adapters/memory"
	"github.com/aretw0/utm/pkg/adapters/redis"
	"github.com/aretw0/utm/pkg/adapters/sqlite"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOpts(t *testing.T, machine string) (RunOptions, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return RunOptions{
		Dir:      t.TempDir(),
		Machine:  machine,
		Store:    StoreMemory,
		LogLevel: "off",
		Stdout:   &out,
		Stderr:   &bytes.Buffer{},
	}, &out
}

func TestRun_JSON(t *testing.T) {
	opts, out := runOpts(t, filepath.Join("testdata", "flip.properties"))
	opts.Input = "1"
	opts.JSON = true

	rec, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, domain.Accepted, rec.Outcome)

	var decoded domain.RunRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, rec.ID, decoded.ID)
	assert.Equal(t, "01", decoded.Tape)
	assert.Equal(t, domain.Accepted, decoded.Outcome)
}

func TestRun_Display(t *testing.T) {
	opts, out := runOpts(t, filepath.Join("testdata", "flip.properties"))
	opts.Input = "1"

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ACCEPTED")
	assert.Contains(t, out.String(), "tape=01")
}

func TestRun_StepBudget(t *testing.T) {
	opts, out := runOpts(t, filepath.Join("testdata", "forever.yaml"))
	opts.MaxSteps = 25
	opts.JSON = true

	rec, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, domain.ErrStepBudgetExceeded)
	require.NotNil(t, rec)
	assert.Equal(t, 25, rec.Steps)
	assert.Contains(t, out.String(), "step budget exceeded", "aborted runs are still printed")
}

func TestRun_Errors(t *testing.T) {
	t.Run("Missing Machine", func(t *testing.T) {
		opts, _ := runOpts(t, "nope")
		_, err := Run(context.Background(), opts)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("Unknown Store", func(t *testing.T) {
		opts, _ := runOpts(t, filepath.Join("testdata", "flip.properties"))
		opts.Store = "etcd"
		_, err := Run(context.Background(), opts)
		assert.ErrorContains(t, err, "unknown store")
	})

	t.Run("Bad Log Level", func(t *testing.T) {
		opts, _ := runOpts(t, filepath.Join("testdata", "flip.properties"))
		opts.LogLevel = "chatty"
		_, err := Run(context.Background(), opts)
		assert.Error(t, err)
	})
}

func TestRun_PersistsToFileStore(t *testing.T) {
	opts, _ := runOpts(t, filepath.Join("testdata", "flip.properties"))
	opts.Input = "1"
	opts.JSON = true
	opts.Store = StoreFile

	rec, err := Run(context.Background(), opts)
	require.NoError(t, err)

	saved, err := file.New(filepath.Join(StateDir(opts.Dir), "runs")).Load(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Accepted, saved.Outcome)
}

func TestLoadMachine_ByName(t *testing.T) {
	dir := testutils.MachineDir(t, map[string]string{"flipper.properties": testutils.Flip})

	desc, _, err := LoadMachine(dir, "flipper")
	require.NoError(t, err)
	assert.Equal(t, "flipper", desc.Name)
	assert.Equal(t, domain.State("q0"), desc.Config.InitialState)
}

func TestLint(t *testing.T) {
	desc, warnings, err := Lint(".", filepath.Join("testdata", "forever.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, "forever", desc.Name)
	assert.NotEmpty(t, warnings, "a machine without a reachable terminal is flagged")

	_, warnings, err = Lint(".", filepath.Join("testdata", "flip.properties"), true)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := OpenStore(ctx, StoreMemory, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.NoError(t, closeFn())

	store, closeFn, err = OpenStore(ctx, StoreSQLite, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, store)
	assert.NoError(t, closeFn())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	t.Setenv(RedisAddrEnv, mr.Addr())

	runs, closeFn, err := OpenRuns(ctx, StoreRedis, t.TempDir(), nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &redis.Store{}, runs.Store())

	require.NoError(t, runs.Save(ctx, &domain.RunRecord{ID: "r1", Machine: "flip"}))
	ids, err := runs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}
