package world

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Charset converts between the host's string encoding and the UTF-8 strings
// scripts work with. A nil encoding means the host already stores UTF-8.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// NewCharset looks up an encoding by its WHATWG name ("windows-1252",
// "big5", "utf-8", ...).
func NewCharset(name string) (*Charset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" || name == "utf8" {
		return &Charset{name: "utf-8"}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown host charset %q: %w", name, err)
	}
	return &Charset{name: name, enc: enc}, nil
}

func (c *Charset) Name() string { return c.name }

// Decode turns host bytes into UTF-8. Undecodable input is returned as is.
func (c *Charset) Decode(s string) string {
	if c.enc == nil || s == "" {
		return s
	}
	out, err := c.enc.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// Encode turns UTF-8 into host bytes, replacing unrepresentable runes.
func (c *Charset) Encode(s string) string {
	if c.enc == nil || s == "" {
		return s
	}
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).String(s)
	if err != nil {
		return s
	}
	return out
}
