package l1

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseControllerRef(t *testing.T) {
	ref, err := ParseControllerRef("maqueen/abc")
	require.NoError(t, err)
	require.Equal(t, ControllerRef{Type: "maqueen", ID: "abc"}, ref)
	require.True(t, ref.IsValid())
	require.Equal(t, "maqueen/abc", ref.String())

	ref, err = ParseControllerRef("")
	require.NoError(t, err)
	require.False(t, ref.IsValid())

	for _, name := range []string{"maqueen", "/abc", "maqueen/", "a/b/c"} {
		_, err = ParseControllerRef(name)
		require.Error(t, err, name)
	}
}

func TestControllerRefFlag(t *testing.T) {
	var ref ControllerRef
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&ref, "target", "")
	require.NoError(t, fs.Parse([]string{"-target", "maqueen-teleop/js0"}))
	require.Equal(t, ControllerRef{Type: "maqueen-teleop", ID: "js0"}, ref)
	require.Error(t, fs.Parse([]string{"-target", "bogus"}))
}
