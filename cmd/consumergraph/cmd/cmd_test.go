package cmd

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/consumergraph/consumergraph/internal/broker"
	"github.com/consumergraph/consumergraph/internal/config"
	"github.com/consumergraph/consumergraph/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDecode(t *testing.T) {
	out, err := execute(t, "decode", "0001000267310001740000010200")
	require.NoError(t, err)
	assert.Equal(t, "offset-commit v1 group=\"g1\" topic=\"t\" partition=258\n", out)

	out, err = execute(t, "decode", "0x00020002673100")
	require.NoError(t, err)
	assert.Equal(t, "group-metadata v2 group=\"g1\"\n", out)
}

func TestDecode_Errors(t *testing.T) {
	_, err := execute(t, "decode", "zz")
	assert.ErrorContains(t, err, "invalid hex key")

	_, err = execute(t, "decode", "000100ff")
	assert.ErrorContains(t, err, "decode offsets key")

	_, err = execute(t, "decode")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "consumergraph version")
}

func TestProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	out, err := execute(t, "probe", "--bootstrap-servers", ln.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, ln.Addr().String()+" reachable\n", out)
}

func TestProbe_Unreachable(t *testing.T) {
	addr := test.FreeAddr(t)
	path := test.WriteFile(t, "c.properties", "bootstrap.servers="+addr+"\nprobe.timeout=200ms\n")

	_, err := execute(t, "probe", "-c", path)
	var unreachable *broker.UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, addr, unreachable.Addr)
}

func TestProbe_MissingServers(t *testing.T) {
	path := test.WriteFile(t, "c.properties", "cluster.name=prod\n")

	_, err := execute(t, "probe", "-c", path)
	var missing *config.MissingKeysError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{config.KeyBootstrapServers}, missing.Keys)
}

func TestServe_RejectsIncompleteConfig(t *testing.T) {
	path := test.WriteFile(t, "c.yaml", "cluster:\n  name: prod\n")

	_, err := execute(t, "-c", path)
	var missing *config.MissingKeysError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{config.KeyBootstrapServers, config.KeyPort}, missing.Keys)
}

func TestServe_FlagsOverrideFile(t *testing.T) {
	path := test.WriteFile(t, "c.properties", "bootstrap.servers=localhost:9092\nport=8080\nui.style=graph\n")

	_, err := execute(t, "-c", path, "--ui-style", "pie")
	var invalid *config.InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, config.KeyUIStyle, invalid.Key)
}

func TestServe_RejectsArgs(t *testing.T) {
	_, err := execute(t, "extra")
	assert.Error(t, err)
}
