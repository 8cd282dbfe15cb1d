package sexp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
		want  string
	}{
		{"simple list", "(version 20221018)", 1, "(version 20221018)"},
		{"nested", `(net 1 "GND") (net 2 "+5V")`, 2, `(net 1 GND)`},
		{"quoted with spaces", `(title "My Board")`, 1, `(title "My Board")`},
		{"escaped quote", `(name "a\"b")`, 1, `(name "a\"b")`},
		{"multiline", "(a\n  (b c))\n", 1, "(a (b c))"},
		{"empty list", "()", 1, "()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.input)
			require.NoError(t, err)
			require.Len(t, got, tt.count)
			assert.Equal(t, tt.want, got[0].String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"(a (b)", "a)", `(a "unterminated)`} {
		_, err := ParseString(input)
		assert.Error(t, err, input)
	}
}

func TestNavigation(t *testing.T) {
	nodes, err := ParseString(`(via (at 10.5 -2) (size 0.8) (layers "F.Cu" "B.Cu") (net 3) locked)`)
	require.NoError(t, err)
	via := nodes[0]

	name, err := GetNodeName(via)
	require.NoError(t, err)
	assert.Equal(t, "via", name)

	at, ok := FindNode(via, "at")
	require.True(t, ok)
	pos, err := GetPosition(at)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 10.5, Y: -2}, pos.Position)

	size, ok := FindNode(via, "size")
	require.True(t, ok)
	s, err := GetSize(size)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 0.8, Height: 0.8}, s)

	layers, ok := FindNode(via, "layers")
	require.True(t, ok)
	assert.Equal(t, []string{"F.Cu", "B.Cu"}, GetStrings(layers))

	net, _ := FindNode(via, "net")
	n, err := GetInt(net, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.True(t, HasSymbol(via, "locked"))
	assert.False(t, HasSymbol(via, "free"))
	assert.Len(t, FindAllNodes(via, "at"), 1)

	_, err = GetInt(net, 5)
	assert.Error(t, err)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Open("segment")
	w.Open("start").MM(1_500_000).MM(-2_000_000).Close()
	w.Open("layer").String("F.Cu").Close()
	w.Open("net").Int(4).Close()
	w.Close()
	require.NoError(t, w.Flush())

	want := "(segment\n  (start 1.5 -2)\n  (layer \"F.Cu\")\n  (net 4))\n"
	assert.Equal(t, want, buf.String())

	nodes, err := ParseString(buf.String())
	require.NoError(t, err)
	start, ok := FindNode(nodes[0], "start")
	require.True(t, ok)
	pos, err := GetPositionXY(start)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1.5, Y: -2}, pos)
}

type failingWriter struct{ calls int }

func (f *failingWriter) Write([]byte) (int, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestWriterErr(t *testing.T) {
	fw := &failingWriter{}
	w := NewWriter(fw)
	w.Open("net").Int(1).Close()
	assert.NoError(t, w.Err(), "short output stays buffered")

	for i := range 1000 {
		w.Open("net").Int(i).String("VCC").Close()
	}
	require.Error(t, w.Err())
	assert.Equal(t, 1, fw.calls)
	assert.Equal(t, w.Err(), w.Flush())
	assert.Equal(t, 1, fw.calls, "no writes after the first error")
}
