package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_PrintsVersionAndPlatform(t *testing.T) {
	oldVersion := version
	SetVersion("1.2.3")
	defer func() { version = oldVersion }()

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "deckindex 1.2.3")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	oldVersion := version
	defer func() { version = oldVersion }()

	SetVersion("")

	assert.Equal(t, oldVersion, version)
}
