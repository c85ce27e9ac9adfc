package stepctl

import (
	"go/build"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection(t *testing.T) {
	tests := []struct {
		v        float64
		expected Direction
		str      string
		sign     int
	}{
		{90, DirectionClockwise, "CW", 1},
		{-0.5, DirectionCounterClockwise, "CCW", -1},
		{0, DirectionNone, "None", 0},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			d := DirectionOf(tt.v)
			assert.Equal(t, tt.expected, d)
			assert.Equal(t, tt.str, d.String())
			assert.Equal(t, tt.sign, d.Sign())
		})
	}

	assert.Equal(t, DirectionClockwise, Clockwise(true))
	assert.Equal(t, DirectionCounterClockwise, Clockwise(false))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Debug("debug", "key", 1)
		Discard.Info("info")
		Discard.Warn(nil, "key")
	})
}

// TestFirmwareImports walks the packages the firmware links with the tinygo build tag and checks that
// none of the host-only libraries end up in the MCU build
func TestFirmwareImports(t *testing.T) {
	const module = "github.com/calvinmclean/stepctl"
	hostOnly := []string{
		"github.com/charmbracelet",
		"gobot.io",
		"go.bug.st/serial",
		"gonum.org",
		"encoding/json",
		"os",
	}

	ctx := build.Default
	ctx.BuildTags = []string{"tinygo"}

	seen := map[string]bool{}
	var visit func(dir string)
	visit = func(dir string) {
		if seen[dir] {
			return
		}
		seen[dir] = true

		pkg, err := ctx.ImportDir(dir, 0)
		require.NoError(t, err, dir)
		for _, imp := range pkg.Imports {
			for _, prefix := range hostOnly {
				assert.False(t, imp == prefix || strings.HasPrefix(imp, prefix+"/"), "%s imports %s", dir, imp)
			}
			if rel, ok := strings.CutPrefix(imp, module); ok {
				visit(filepath.Join(".", filepath.FromSlash(strings.TrimPrefix(rel, "/"))))
			}
		}
	}
	visit(filepath.Join("firmware", "device"))
	visit(filepath.Join("firmware", "commands"))

	assert.True(t, seen["controller"])
	assert.True(t, seen["calibrate"])
	assert.True(t, seen["board"])
}
