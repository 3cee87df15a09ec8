package sink

import "strings"

// Compact emits only the whitespace required for valid tokenization,
// dropping every optional space and line break pretty mode would add.
type Compact struct {
	sb strings.Builder
}

// NewCompact returns an empty compact-mode sink.
func NewCompact() *Compact { return &Compact{} }

func (c *Compact) Write(text string) { c.sb.WriteString(text) }

func (c *Compact) WriteSpace(required bool) {
	if required {
		c.sb.WriteString(" ")
	}
}

func (c *Compact) WriteLine(required bool) {
	if required {
		c.sb.WriteString("\n")
	}
}

func (c *Compact) WriteBlockOpen()  { c.Write("{") }
func (c *Compact) WriteBlockClose() { c.Write("}") }

func (c *Compact) String() string { return c.sb.String() }
