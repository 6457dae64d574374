package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	relvalconfig "github.com/cms-egamma/egdqm/cmd/internal/config/relval"
	"github.com/cms-egamma/egdqm/pkg/relval"
	"github.com/stretchr/testify/require"
)

const (
	sampleFile = "DQM_V0001_R000000001__RelValZEE_14__CMSSW_12_4_0-PU_124X_mcRun3_2022_realistic_v5-v1__DQMIO.root"
	refFile    = "DQM_V0001_R000000001__RelValZEE_14__CMSSW_12_3_0-123X_mcRun3_2021_realistic_v11-v1__DQMIO.root"
)

func TestReadConfig(t *testing.T) {
	require.NoError(t, command.Flags().Set(configFlag, ""))

	cfg, err := readConfig(command)
	require.NoError(t, err)
	require.Equal(t, relval.DefaultPlotter, relvalconfig.Plotter(cfg))

	require.NoError(t, command.Flags().Set(macroFlag, "other.C+"))
	require.Equal(t, "other.C+", relvalconfig.Macro(cfg))

	require.Equal(t, relval.DefaultEntry, relvalconfig.Entry(cfg))
	require.NoError(t, command.Flags().Set(entryFlag, "plotAll"))
	require.Equal(t, "plotAll", relvalconfig.Entry(cfg))
}

func TestEntryPoint(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no shell")
	}

	base := t.TempDir()
	out := new(bytes.Buffer)

	// fake plotter printing one image into the directory given as the
	// first argument of the entry call, which is the last argument
	script := `eval "call=\${$#}"; case "$call" in plotAll\(*) ;; *) exit 1 ;; esac; dir=$(printf "%s" "$call" | cut -d\" -f2); mkdir -p "$dir/Kinematics" && : > "$dir/Kinematics/pt.gif"`

	command.SetOut(out)
	command.SetArgs([]string{
		sampleFile, refFile,
		"-o", base,
		"--plotter", "sh -c '" + script + "' sh",
		"--macro", "plot",
		"--entry", "plotAll",
	})

	require.NoError(t, command.Execute())

	dir := filepath.Join(base, "EGRelVal_ZEE_1240PUVs1230")
	require.Equal(t, dir+"\n", out.String())
	require.FileExists(t, filepath.Join(dir, "Kinematics", "pt.gif"))
	require.FileExists(t, filepath.Join(dir, "Kinematics", relval.IndexFile))

	index, err := os.ReadFile(filepath.Join(dir, relval.IndexFile))
	require.NoError(t, err)
	require.Contains(t, string(index), `href="Kinematics"`)

	require.ErrorIs(t, command.Execute(), relval.ErrOutputExists)
}
