package rdb

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Program is a compiled query: a conjunction of equality terms evaluated
// against map-shaped records. A nil *Program matches every record.
type Program struct {
	terms []term
}

type term struct {
	key  string
	want Value
}

// CompileError reports where and why query compilation failed.
type CompileError struct {
	Pos int
	Msg string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling query at offset %d: %s", e.Pos, e.Msg)
}

// Compile translates query text into an executable Program. The grammar is
// a conjunction of equality terms:
//
//	field = "text"  &&  users = 2  &&  crc = 0xDEADBEEF
//
// Field names are identifiers; literals are double-quoted strings, decimal
// unsigned integers, or 0x-prefixed hex blobs.
func (s *Store) Compile(text string) (*Program, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return compile(text)
}

func compile(text string) (*Program, error) {
	p := &parser{src: text}
	prog, err := p.program()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &CompileError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) program() (*Program, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("empty query")
	}

	prog := &Program{}
	for {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		prog.terms = append(prog.terms, t)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return prog, nil
		}
		if !strings.HasPrefix(p.src[p.pos:], "&&") {
			return nil, p.errorf("expected && or end of query")
		}
		p.pos += 2
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("trailing &&")
		}
	}
}

func (p *parser) term() (term, error) {
	key, err := p.ident()
	if err != nil {
		return term{}, err
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		return term{}, p.errorf("expected = after field %q", key)
	}
	p.pos++
	p.skipSpace()
	want, err := p.literal()
	if err != nil {
		return term{}, err
	}
	return term{key: key, want: want}, nil
}

func (p *parser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if unicode.IsLetter(c) || c == '_' || (p.pos > start && unicode.IsDigit(c)) {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.errorf("expected field name")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) literal() (Value, error) {
	if p.pos >= len(p.src) {
		return Value{}, p.errorf("expected literal")
	}
	switch c := p.src[p.pos]; {
	case c == '"':
		return p.stringLiteral()
	case strings.HasPrefix(p.src[p.pos:], "0x") || strings.HasPrefix(p.src[p.pos:], "0X"):
		return p.hexLiteral()
	case c >= '0' && c <= '9':
		return p.uintLiteral()
	default:
		return Value{}, p.errorf("expected literal, found %q", c)
	}
}

func (p *parser) stringLiteral() (Value, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return StringValue(b.String()), nil
		case '\\':
			if p.pos+1 >= len(p.src) {
				return Value{}, p.errorf("unterminated escape")
			}
			p.pos++
			b.WriteByte(p.src[p.pos])
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return Value{}, p.errorf("unterminated string literal")
}

func (p *parser) hexLiteral() (Value, error) {
	p.pos += 2 // 0x
	start := p.pos
	for p.pos < len(p.src) && isHexDigit(p.src[p.pos]) {
		p.pos++
	}
	digits := p.src[start:p.pos]
	if digits == "" || len(digits)%2 != 0 {
		return Value{}, p.errorf("hex literal needs an even number of digits")
	}
	bin, err := hex.DecodeString(digits)
	if err != nil {
		return Value{}, p.errorf("bad hex literal: %v", err)
	}
	return BinaryValue(bin), nil
}

func (p *parser) uintLiteral() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.ParseUint(p.src[start:p.pos], 10, 64)
	if err != nil {
		return Value{}, p.errorf("bad integer literal: %v", err)
	}
	return UintValue(n), nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Matches reports whether a record satisfies every term. Only map-shaped
// records can match. Term lookup uses the record's final value for the
// key, consistent with last-write-wins projection.
func (p *Program) Matches(rec Value) bool {
	if p == nil {
		return true
	}
	if rec.Kind != KindMap {
		return false
	}
	for _, t := range p.terms {
		if !rec.Get(t.key).Equal(t.want) {
			return false
		}
	}
	return true
}
