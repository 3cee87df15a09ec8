package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyIndentsBlockBody(t *testing.T) {
	p := NewPretty()
	p.Write("class Foo")
	p.WriteSpace(true)
	p.WriteBlockOpen()
	p.Write("int x;")
	p.WriteLine(true)
	p.WriteBlockClose()
	p.Write(";")

	assert.Equal(t, "class Foo {\n  int x;\n};", p.String())
}

func TestPrettyEmitsOptionalSpaceAndLineRegardlessOfRequired(t *testing.T) {
	p := NewPretty()
	p.Write("a")
	p.WriteSpace(false)
	p.Write("b")
	p.WriteLine(false)
	p.Write("c")

	assert.Equal(t, "a b\nc", p.String())
}

func TestPrettyNeverDedentsBelowZero(t *testing.T) {
	p := NewPretty()
	p.WriteBlockClose()
	p.Write("x")
	assert.Equal(t, "}x", p.String())
}

func TestCompactDropsOptionalWhitespace(t *testing.T) {
	c := NewCompact()
	c.Write("class Foo")
	c.WriteSpace(false)
	c.WriteBlockOpen()
	c.Write("int x;")
	c.WriteLine(false)
	c.WriteBlockClose()
	c.Write(";")

	assert.Equal(t, "class Foo{int x;};", c.String())
}

func TestCompactKeepsRequiredWhitespace(t *testing.T) {
	c := NewCompact()
	c.Write("const")
	c.WriteSpace(true)
	c.Write("int")
	c.WriteLine(true)

	assert.Equal(t, "const int\n", c.String())
}
