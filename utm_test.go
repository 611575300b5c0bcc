package utm_test

import (
	"context"
	"testing"

	"github.com/aretw0/utm"
	"github.com/aretw0/utm/pkg/adapters/memory"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const machinesDir = "examples/machines"

func TestFacade_Directory(t *testing.T) {
	eng, err := utm.New(machinesDir)
	require.NoError(t, err)
	assert.Equal(t, "machines", eng.Name)

	names, err := eng.List()
	require.NoError(t, err)
	assert.Subset(t, names, []string{"busy-beaver-2", "busy-beaver-3", "eraser", "flip", "parity"})

	rec, err := eng.Run(context.Background(), "flip", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.Accepted, rec.Outcome)
	assert.Equal(t, "01", rec.Tape)

	rec, err = eng.Run(context.Background(), "parity", "111")
	require.NoError(t, err)
	assert.Equal(t, domain.Rejected, rec.Outcome)

	rec, err = eng.Run(context.Background(), "busy-beaver-2", "")
	require.NoError(t, err)
	assert.Equal(t, domain.Accepted, rec.Outcome)

	_, err = eng.Run(context.Background(), "missing", "")
	assert.ErrorIs(t, err, domain.ErrMachineNotFound)
}

func TestFacade_ValidateAndGraph(t *testing.T) {
	eng, err := utm.New(machinesDir, utm.WithStrict(true))
	require.NoError(t, err)

	for _, name := range []string{"flip", "parity", "eraser", "busy-beaver-3"} {
		warnings, err := eng.Validate(name)
		require.NoError(t, err, name)
		assert.Empty(t, warnings, name)
	}

	diagram, err := eng.Graph("flip")
	require.NoError(t, err)
	assert.Contains(t, diagram, "stateDiagram-v2")
	assert.Contains(t, diagram, "q0 --> q1")
}

func TestFacade_CustomLoader(t *testing.T) {
	loader, err := dsl.Loader(
		dsl.New("forever").On("q0", '0').Right().Go("q0"),
	)
	require.NoError(t, err)

	store := memory.NewStore()
	eng, err := utm.New("", utm.WithLoader(loader), utm.WithMaxSteps(50), utm.WithStore(store))
	require.NoError(t, err)
	assert.Same(t, loader, eng.Loader())

	rec, err := eng.Run(context.Background(), "forever", "")
	require.ErrorIs(t, err, domain.ErrStepBudgetExceeded)
	assert.Equal(t, 50, rec.Steps)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID}, ids)

	warnings, err := eng.Validate("forever")
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
}

func TestFacade_RequiresSource(t *testing.T) {
	_, err := utm.New("")
	assert.Error(t, err)
}
