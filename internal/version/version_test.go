package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.NotEmpty(t, info.GitCommit)
	assert.NotEmpty(t, info.BuildTime)
}

func TestString(t *testing.T) {
	prev := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = prev })

	s := String()
	assert.Contains(t, s, "consumergraph version 1.2.3")
	assert.Contains(t, s, "go: "+runtime.Version())
}
