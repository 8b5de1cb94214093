package escpos

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Raw control sequences understood by ESC/POS receipt printers
var (
	CmdInit    = []byte{0x1B, 0x40}             // ESC @
	CmdFullCut = []byte{0x1D, 0x56, 0x41, 0x00} // GS V A 0
)

const LineFeed byte = 0x0A

// DateLayout renders the receipt timestamp
const DateLayout = "Mon Jan 02 15:04:05 MST 2006"

// DefaultModel is the printer model named on the test receipt
const DefaultModel = "JK-80PL"

// Segment is one builder step of a job
type Segment struct {
	Name string
	Data []byte
}

// Command builds an ESC/POS job as an ordered list of segments.
// Each builder call appends one segment so the job can be written
// to the printer in the same order and granularity it was composed.
type Command struct {
	segments []Segment
	enc      *encoding.Encoder
}

func New() *Command {
	return &Command{
		// PC437 is the power-on code page of the JK-80 family
		enc: encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder()),
	}
}

func (c *Command) add(name string, b []byte) *Command {
	c.segments = append(c.segments, Segment{Name: name, Data: b})
	return c
}

// Init resets the printer to its power-on state
func (c *Command) Init() *Command {
	return c.add("init", append([]byte(nil), CmdInit...))
}

// Text appends a block of text encoded for the printer's code page
func (c *Command) Text(s string) *Command {
	out, err := c.enc.Bytes([]byte(s))
	if err != nil {
		out = []byte(s)
	}
	return c.add("text", out)
}

// Feed appends n line feeds
func (c *Command) Feed(n int) *Command {
	if n < 0 {
		n = 0
	}
	return c.add("feed", bytes.Repeat([]byte{LineFeed}, n))
}

// Cut performs a full paper cut
func (c *Command) Cut() *Command {
	return c.add("cut", append([]byte(nil), CmdFullCut...))
}

// Segments returns the job split the way it was built
func (c *Command) Segments() []Segment {
	return c.segments
}

// Bytes returns the raw job to send to the printer
func (c *Command) Bytes() []byte {
	var buf bytes.Buffer
	for _, s := range c.segments {
		buf.Write(s.Data)
	}
	return buf.Bytes()
}

// String returns the job with control bytes escaped (for debugging)
func (c *Command) String() string {
	return fmt.Sprintf("%q", c.Bytes())
}

// TestReceiptText renders the fixed test receipt body
func TestReceiptText(now time.Time, model string) string {
	if model == "" {
		model = DefaultModel
	}
	rule := strings.Repeat("-", 32)
	lines := []string{
		rule,
		"        TEST PRINT",
		"        " + model,
		rule,
		"Date: " + now.Format(DateLayout),
		"",
		"Test successful!",
		rule,
		"",
		"",
		"",
	}
	return strings.Join(lines, "\n")
}

// TestReceipt builds the complete test job: init, body, 3 feeds, full cut
func TestReceipt(now time.Time, model string) *Command {
	return New().
		Init().
		Text(TestReceiptText(now, model)).
		Feed(3).
		Cut()
}
