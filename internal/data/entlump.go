package data

import (
	"fmt"
	"strings"
)

// ParseEntityLump parses the text entity lump of a compiled map:
//
//	{
//	"classname" "worldspawn"
//	"message" "The Slipgate Complex"
//	}
//
// Keys beginning with "_" are editor-only and dropped. "angle" is rewritten
// to "angles" as "0 <yaw> 0".
func ParseEntityLump(name, src string) (*Level, error) {
	p := &lumpParser{src: src, line: 1}
	lvl := &Level{Name: name}
	for {
		tok, ok := p.next()
		if !ok {
			break
		}
		if tok != "{" {
			return nil, p.errorf("expected {, got %q", tok)
		}
		ent, err := p.entity()
		if err != nil {
			return nil, err
		}
		lvl.Entities = append(lvl.Entities, ent)
	}
	if err := lvl.validate(); err != nil {
		return nil, err
	}
	return lvl, nil
}

type lumpParser struct {
	src  string
	pos  int
	line int
}

func (p *lumpParser) errorf(format string, args ...any) error {
	return fmt.Errorf("entity lump line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *lumpParser) entity() (Entity, error) {
	ent := Entity{}
	for {
		key, ok := p.next()
		if !ok {
			return nil, p.errorf("EOF inside entity")
		}
		if key == "}" {
			return ent, nil
		}
		if key == "{" {
			return nil, p.errorf("nested {")
		}
		value, ok := p.next()
		if !ok {
			return nil, p.errorf("EOF without value for %q", key)
		}
		if value == "}" || value == "{" {
			return nil, p.errorf("key %q has no value", key)
		}
		key = strings.TrimRight(key, " ")
		if strings.HasPrefix(key, "_") {
			continue
		}
		if key == "angle" {
			key, value = "angles", "0 "+value+" 0"
		}
		ent[key] = value
	}
}

// next returns the next token: a brace, a quoted string or a bare word.
func (p *lumpParser) next() (string, bool) {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c <= ' ':
			p.pos++
		case c == '/' && strings.HasPrefix(p.src[p.pos:], "//"):
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return p.token(), true
		}
	}
	return "", false
}

func (p *lumpParser) token() string {
	c := p.src[p.pos]
	if c == '{' || c == '}' {
		p.pos++
		return string(c)
	}
	if c == '"' {
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '"' {
			if p.src[p.pos] == '\n' {
				p.line++
			}
			p.pos++
		}
		tok := p.src[start:p.pos]
		if p.pos < len(p.src) {
			p.pos++ // closing quote
		}
		return tok
	}
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] > ' ' && p.src[p.pos] != '{' && p.src[p.pos] != '}' && p.src[p.pos] != '"' {
		p.pos++
	}
	return p.src[start:p.pos]
}
