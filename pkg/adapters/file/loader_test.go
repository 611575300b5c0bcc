package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/utm/internal/compiler"
	"github.com/aretw0/utm/internal/testutils"
	"github.com/aretw0/utm/pkg/adapters/file"
	"github.com/aretw0/utm/pkg/domain"
	contract "github.com/aretw0/utm/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader_Contract(t *testing.T) {
	dir := testutils.MachineDir(t, map[string]string{
		"flip.properties": "initialState=q0\nacceptState=qa\nrejectState=qr\nvariant=CLASSICAL\nrules=q0,1,q1,0,RIGHT<>q1,0,qa,1,RIGHT\n",
		"bb.yaml":         "variant: BUSY_BEAVER\ninitial_state: a\nrules: \"a,0,qa,1,RIGHT\"\n",
		"rewind.json":     `{"variant": "LEFT_RESET", "initial_state": "q0", "rules": "q0,1,q0,1,RESET"}`,
		"notes.txt":       "ignored",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0755))

	contract.MachineLoaderContractTest(t, file.NewLoader(dir), map[string]domain.Variant{
		"flip":   domain.Classical,
		"bb":     domain.BusyBeaver,
		"rewind": domain.LeftReset,
	})
}

func TestFileLoader_FileNameWins(t *testing.T) {
	dir := testutils.MachineDir(t, map[string]string{
		"short.yaml": "name: a-much-longer-name\ninitial_state: q0\nrules: \"q0,0,qa,0,RIGHT\"\n",
	})
	desc, err := file.NewLoader(dir).Load("short")
	require.NoError(t, err)
	assert.Equal(t, "short", desc.Name)
}

func TestFileLoader_Options(t *testing.T) {
	dir := testutils.MachineDir(t, map[string]string{
		"odd.properties": "initialState=q0\nrules=q0,0,qa,0,SIDEWAYS\n",
	})

	desc, report, err := file.NewLoader(dir).LoadWithReport("odd")
	require.NoError(t, err)
	assert.Equal(t, domain.Reset, desc.Rules.Rule(0).Move)
	assert.Len(t, report.Warnings, 1)

	_, err = file.NewLoader(dir, compiler.WithStrict(true)).Load("odd")
	assert.ErrorIs(t, err, domain.ErrMalformedRuleTable)
}
