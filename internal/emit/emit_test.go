package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Indentation(t *testing.T) {
	var w Writer

	w.Open("func f(v int) int {")
	w.Open("if v > 0 {")
	w.Line("return %d", 1)
	w.Middle("} else {")
	w.Line("return 0")
	w.Close("}")
	w.Close("}")

	assert.Equal(t, "func f(v int) int {\n\tif v > 0 {\n\t\treturn 1\n\t} else {\n\t\treturn 0\n\t}\n}\n", w.String())
}

func TestWriter_Block(t *testing.T) {
	var w Writer

	w.Open("{")
	w.Block("a()\n\nb()\n")
	w.Close("}")

	assert.Equal(t, "{\n\ta()\n\n\tb()\n}\n", w.String())
}

func TestWriter_LiteralPercent(t *testing.T) {
	var w Writer

	w.Line("%s", `fmt.Sprintf("%d", x)`)
	w.Line("x := %d", 5)
	assert.Equal(t, "fmt.Sprintf(\"%d\", x)\nx := 5\n", w.String())
}

func TestFile_RenderPrunesAndAddsImports(t *testing.T) {
	f := NewFile("a.go", "sample")
	f.Import("github.com/aws/smithy-go/ptr")
	f.Add(`func Now() string { return strconv.Itoa(1) }`)

	out, err := f.Render()
	require.NoError(t, err)

	src := string(out)
	assert.Contains(t, src, "// Code generated by codec-generator. DO NOT EDIT.")
	assert.Contains(t, src, `"strconv"`)
	assert.NotContains(t, src, "smithy-go/ptr")
}

func TestFile_RenderFailureReturnsSource(t *testing.T) {
	f := NewFile("broken.go", "sample")
	f.Add("func Broken( {")

	out, err := f.Render()
	require.Error(t, err)
	assert.Contains(t, string(out), "func Broken( {")
}
