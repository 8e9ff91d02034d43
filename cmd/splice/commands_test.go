package main

import (
	"context"
	"testing"

	"github.com/phanxgames/splice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func parseExport(t *testing.T, base splice.ExportConfig, args ...string) splice.ExportConfig {
	t.Helper()
	var got splice.ExportConfig
	cmd := exportCommand()
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		got = exportConfig(c, base)
		return nil
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"export"}, args...)))
	return got
}

func TestExportConfigDefaults(t *testing.T) {
	got := parseExport(t, splice.ExportConfig{}, "project.yaml")
	assert.Equal(t, splice.DefaultExportConfig(), got)
}

func TestExportConfigProjectBlock(t *testing.T) {
	base := splice.ExportConfig{Format: "webm", Output: "clip", FrameRate: 24, Width: 640, Height: 360}
	got := parseExport(t, base, "project.yaml")
	assert.Equal(t, "webm", got.Format)
	assert.Equal(t, "clip.webm", got.Output)
	assert.Equal(t, 24.0, got.FrameRate)
	assert.Equal(t, 640, got.Width)
}

func TestExportConfigFlagsOverride(t *testing.T) {
	base := splice.ExportConfig{Format: "webm", Output: "clip.webm", FrameRate: 24}
	got := parseExport(t, base,
		"--format", "MP4", "-o", "final.mp4", "--fps", "60",
		"--width", "1920", "--height", "1080", "--hard-edges", "project.yaml")
	assert.Equal(t, splice.ExportConfig{
		Format:        "mp4",
		Output:        "final.mp4",
		FrameRate:     60,
		Width:         1920,
		Height:        1080,
		HardEdgeMasks: true,
	}, got)
	assert.NoError(t, got.Validate())
}

func TestExportConfigPNGKeepsDirectory(t *testing.T) {
	got := parseExport(t, splice.ExportConfig{}, "-f", "png", "-o", "frames", "project.yaml")
	assert.Equal(t, "frames", got.Output)
}

func TestRequireArgs(t *testing.T) {
	var err error
	cmd := stillsCommand()
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		err = requireArgs(c, 2)
		return nil
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"stills", "only-project.yaml"}))
	assert.ErrorContains(t, err, "PROJECT SCRIPT")
}
