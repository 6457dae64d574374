package dqm_test

import (
	"testing"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/stretchr/testify/require"
)

func TestDatasetSanitizing(t *testing.T) {
	const ds = "/EGamma/Run2018A-PromptReco-v1/DQMIO"

	s := dqm.SanitizeDataset(ds)
	require.Equal(t, "EGamma--Run2018A-PromptReco-v1--DQMIO", s)
	require.NotContains(t, s, "/")
	require.Equal(t, ds, dqm.RestoreDataset(s))
}

func TestRunDir(t *testing.T) {
	run, ok := dqm.RunFromDir(dqm.RunDir("316187"))
	require.True(t, ok)
	require.Equal(t, "316187", run)

	_, ok = dqm.RunFromDir("Run")
	require.False(t, ok)
}

func TestRunPath(t *testing.T) {
	p := dqm.RunPath("/EGamma/Run2018A-PromptReco-v1/DQMIO", "316187")
	require.Equal(t,
		"DQMData/EGamma--Run2018A-PromptReco-v1--DQMIO/Run 316187/HLT/Run summary/EGTagAndProbeEffs",
		p.String())

	require.Equal(t, p, dqm.ParsePath(p.String()))
	require.Equal(t, dqm.Path{"a", "b"}, dqm.ParsePath("/a//b/"))
}

func TestPathJoin(t *testing.T) {
	base := make(dqm.Path, 1, 4)
	base[0] = "a"

	x := base.Join("x")
	y := base.Join("y")

	require.Equal(t, dqm.Path{"a", "x"}, x)
	require.Equal(t, dqm.Path{"a", "y"}, y)
}

func TestCatalog(t *testing.T) {
	c := make(dqm.Catalog)
	c.Add("/B/x/DQMIO", "2")
	c.Add("/A/x/DQMIO", "1")
	c.Add("/A/x/DQMIO", "3")
	c.Add("/A/x/DQMIO", "1")
	c.Add("/C/x/DQMIO", "")

	require.Equal(t, []string{"/A/x/DQMIO", "/B/x/DQMIO", "/C/x/DQMIO"}, c.Datasets())
	require.Equal(t, []string{"1", "3", "2"}, c.Runs())
	require.True(t, c.Contains("/A/x/DQMIO", "3"))
	require.False(t, c.Contains("/B/x/DQMIO", "3"))
	require.False(t, c.Contains("/D/x/DQMIO", "1"))
	require.Empty(t, c["/C/x/DQMIO"])
}

func TestKindRecognized(t *testing.T) {
	require.True(t, dqm.KindTH1F.Recognized())
	require.True(t, dqm.KindTH2F.Recognized())
	require.False(t, dqm.Kind("TProfile").Recognized())
	require.False(t, dqm.Kind("").Recognized())
}
