package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardHeader = `(kicad_pcb (version 20221018) (generator pcbnew)
  (layers
    (0 "F.Cu" signal)
    (31 "B.Cu" signal)
    (44 "Edge.Cuts" user))
  (net 0 "")
  (net 1 "GND")
  (net 2 "VCC")
  (gr_line (start 0 0) (end 40 0) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 40 0) (end 40 20) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 40 20) (end 0 20) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 0 20) (end 0 0) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (segment (start 5 5) (end 15 5) (width 0.25) (layer "F.Cu") (net 1))
  (segment (start 10 2) (end 10 8) (width 0.25) (layer "F.Cu") (net 1))
  (segment (start 5 15) (end 15 15) (width 0.25) (layer "F.Cu") (net 2))
`

// cleanBoard has two crossing GND traces and a VCC trace far away.
const cleanBoard = boardHeader + ")\n"

// dirtyBoard adds a VCC trace across the GND traces.
const dirtyBoard = boardHeader + `  (segment (start 10 3) (end 30 3) (width 0.25) (layer "F.Cu") (net 2))
)
`

const wideRules = `
layers: [F.Cu, B.Cu]
clearance_classes: [default]
clearances:
  - classes: [default, default]
    value: 20000000
`

const frontOnlyRules = `
layers: [F.Cu]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, rulesFile, timeout = false, "", 0
	outputDir, jobs = "", 4
	checkNormalize = false
	exportOutput, exportNormalize = "", false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCommandsE2E(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "clean.kicad_pcb", cleanBoard)
	dirty := writeFile(t, dir, "dirty.kicad_pcb", dirtyBoard)
	wide := writeFile(t, dir, "wide.yaml", wideRules)
	front := writeFile(t, dir, "front.yaml", frontOnlyRules)
	outDir := filepath.Join(dir, "out")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "normalize",
			args:        []string{"normalize", clean},
			wantContain: []string{"Before", "clean.kicad_pcb"},
		},
		{
			name:        "normalize several files",
			args:        []string{"normalize", "-j", "2", clean, dirty, "--output-dir", outDir},
			wantContain: []string{"clean.kicad_pcb", "dirty.kicad_pcb"},
		},
		{
			name:    "normalize missing file",
			args:    []string{"normalize", filepath.Join(dir, "missing.kicad_pcb")},
			wantErr: true,
		},
		{
			name:        "check clean",
			args:        []string{"check", "--normalize", clean},
			wantContain: []string{"clean.kicad_pcb: 0 violation(s)"},
		},
		{
			name:        "check dirty",
			args:        []string{"check", clean, dirty},
			wantErr:     true,
			wantContain: []string{"clean.kicad_pcb: 0 violation(s)", "dirty.kicad_pcb:", "clearance violation between"},
		},
		{
			name:        "check with wide rules",
			args:        []string{"check", "--rules", wide, clean},
			wantErr:     true,
			wantContain: []string{"clearance violation between"},
		},
		{
			name:    "rules missing a layer",
			args:    []string{"check", "--rules", front, clean},
			wantErr: true,
		},
		{
			name:        "nets",
			args:        []string{"nets", clean},
			wantContain: []string{"Board: 2 nets", "Islands", "GND", "VCC"},
		},
		{
			name:        "net details",
			args:        []string{"nets", clean, "GND"},
			wantContain: []string{"Net: GND (number 1)", "Tracks (2):", "Islands (1):"},
		},
		{
			name:    "unknown net",
			args:    []string{"nets", clean, "FOO"},
			wantErr: true,
		},
		{
			name:        "export",
			args:        []string{"export", "--normalize", clean},
			wantContain: []string{"(kicad_pcb", "(segment", `(net 1 "GND")`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestNormalizeWritesBoards(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "clean.kicad_pcb", cleanBoard)
	outDir := filepath.Join(dir, "out")

	_, err := run(t, "normalize", clean, "--output-dir", outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "clean.kicad_pcb"))
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(data), "(segment"), "crossing split into four pieces")

	out, err := run(t, "check", filepath.Join(outDir, "clean.kicad_pcb"))
	require.NoError(t, err)
	assert.Contains(t, out, "0 violation(s)")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "clean.kicad_pcb", cleanBoard)
	target := filepath.Join(dir, "copy.kicad_pcb")

	out, err := run(t, "export", clean, "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	first, err := os.ReadFile(target)
	require.NoError(t, err)
	out, err = run(t, "export", target)
	require.NoError(t, err)
	for _, kw := range []string{"(segment", "(gr_line", "(net "} {
		assert.Equal(t, strings.Count(string(first), kw), strings.Count(out, kw), kw)
	}
}
