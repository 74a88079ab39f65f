package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

type parser struct {
	lines []string
	pos   int    // index of the next line
	state string // name of the state block being parsed
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	line := p.lines[p.pos]
	p.pos++
	return line, true
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	return p.lines[p.pos], true
}

// line is the 1-based number of the most recently consumed line.
func (p *parser) line() int {
	return p.pos
}

func (p *parser) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Line:  p.line(),
		State: p.state,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// Parse reads a complete metadata block. The parser is strict about
// structure but retains unknown keys, so files written by newer tools
// still load.
func Parse(b []byte) (*Metadata, error) {
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	p := &parser{lines: lines}

	line, ok := p.next()
	if !ok {
		return nil, ErrUnexpectedEOF
	}
	if line != header {
		return nil, p.errorf("missing %q header", header)
	}

	line, ok = p.next()
	if !ok {
		return nil, ErrUnexpectedEOF
	}
	key, value, err := p.split(line, false, false)
	if err != nil {
		return nil, err
	}
	if key != "version" {
		return nil, p.errorf("expected version, found %q", key)
	}
	version, err := ParseVersion(value)
	if err != nil {
		return nil, p.errorf("malformed version %q", value)
	}
	if version.Major != Current.Major {
		return nil, &VersionError{Version: value}
	}

	m := &Metadata{
		Version: version,
		Width:   DefaultSize,
		Height:  DefaultSize,
	}

	// Optional width and height declarations follow the version line.
	for {
		line, ok := p.peek()
		if !ok {
			return nil, ErrUnexpectedEOF
		}
		if !strings.HasPrefix(line, "\t") {
			break
		}
		p.next()
		key, value, err := p.split(line, false, false)
		if err != nil {
			return nil, err
		}
		if key != "width" && key != "height" {
			// Not part of the header; rewind for the state loop.
			p.pos--
			break
		}
		n, err := p.atoi(key, value)
		if err != nil {
			return nil, err
		}
		if key == "width" {
			m.Width = n
		} else {
			m.Height = n
		}
	}

	if m.Width <= 0 || m.Height <= 0 {
		return nil, p.errorf("invalid cell size %dx%d", m.Width, m.Height)
	}

	for {
		line, ok := p.next()
		if !ok {
			return nil, ErrUnexpectedEOF
		}
		if line == trailer {
			break
		}

		s, err := p.parseState(line)
		if err != nil {
			return nil, err
		}
		m.States = append(m.States, s)
	}

	return m, nil
}

func (p *parser) parseState(line string) (*State, error) {
	p.state = ""

	key, name, err := p.split(line, true, true)
	if err != nil {
		return nil, err
	}
	if key != "state" {
		return nil, p.errorf("expected state, found %q", key)
	}
	p.state = name
	defer func() { p.state = "" }()

	s := &State{Name: name}
	var haveDirs, haveFrames bool

	for {
		line, ok := p.peek()
		if !ok {
			// A state block must be closed by the trailer.
			return nil, ErrUnexpectedEOF
		}
		if !strings.HasPrefix(line, "\t") {
			break
		}
		p.next()

		key, value, err := p.split(line, false, false)
		if err != nil {
			return nil, err
		}

		switch key {
		case "dirs":
			n, err := p.atoi(key, value)
			if err != nil {
				return nil, err
			}
			if !ValidDirs(n) {
				return nil, p.errorf("dirs must be 1, 4 or 8, found %d", n)
			}
			s.Dirs, haveDirs = n, true
		case "frames":
			n, err := p.atoi(key, value)
			if err != nil {
				return nil, err
			}
			if n < 1 {
				return nil, p.errorf("frames must be at least 1, found %d", n)
			}
			s.Frames, haveFrames = n, true
		case "delay":
			for _, entry := range strings.Split(value, ",") {
				d, err := strconv.ParseFloat(entry, 64)
				if err != nil {
					return nil, p.errorf("malformed delay entry %q", entry)
				}
				s.Delay = append(s.Delay, d)
			}
		case "loop":
			n, err := p.atoi(key, value)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, p.errorf("loop must not be negative, found %d", n)
			}
			s.Loop = n
		case "rewind":
			n, err := p.atoi(key, value)
			if err != nil {
				return nil, err
			}
			s.Rewind = n != 0
		case "movement":
			n, err := p.atoi(key, value)
			if err != nil {
				return nil, err
			}
			s.Movement = n != 0
		case "hotspot":
			fields := strings.Split(value, ",")
			if len(fields) != 3 {
				return nil, p.errorf("hotspot must have three fields, found %d", len(fields))
			}
			var h Hotspot
			if h.X, err = p.atoi(key, fields[0]); err != nil {
				return nil, err
			}
			if h.Y, err = p.atoi(key, fields[1]); err != nil {
				return nil, err
			}
			if h.Frame, err = p.atoi(key, fields[2]); err != nil {
				return nil, err
			}
			s.Hotspots = append(s.Hotspots, h)
		default:
			// Forward compatibility: keep the raw value so it can be
			// written back out untouched.
			s.Unknown = append(s.Unknown, Setting{Key: key, Value: value})
		}
	}

	if !haveDirs {
		return nil, p.errorf("missing dirs")
	}
	if !haveFrames {
		return nil, p.errorf("missing frames")
	}
	if s.Delay != nil && len(s.Delay) != s.Frames {
		return nil, p.errorf("delay has %d entries for %d frames", len(s.Delay), s.Frames)
	}
	for _, h := range s.Hotspots {
		if h.Frame < 1 || h.Frame > s.Frames {
			return nil, p.errorf("hotspot frame %d out of range (1..%d)", h.Frame, s.Frames)
		}
	}

	return s, nil
}

// split breaks a line on " = " into its key and parsed value. The key
// has any leading tab removed. Quotes may wrap the whole value, and
// within them backslash escapes quotes and backslashes; unquoted
// values may not contain spaces, tabs, quotes or further equals
// signs. For unknown keys the caller receives the value verbatim, so
// split is only applied to quoting-aware keys.
func (p *parser) split(line string, allowQuotes, requireQuotes bool) (string, string, error) {
	i := strings.Index(line, " = ")
	if i < 0 {
		return "", "", p.errorf("line %q has no value", line)
	}
	key := strings.TrimPrefix(line[:i], "\t")
	raw := line[i+3:]

	if !knownKey(key) {
		return key, raw, nil
	}

	var b strings.Builder
	var quoted, escaped, usedQuotes bool

	for j := 0; j < len(raw); j++ {
		c := raw[j]
		wasEscaped := escaped
		escaped = false
		switch c {
		case '\\':
			if !quoted {
				return "", "", p.errorf("backslash outside quotes in %q", raw)
			}
			if !wasEscaped {
				escaped = true
				continue
			}
		case '"':
			if !allowQuotes {
				return "", "", p.errorf("quote in %q where quotes are not allowed", raw)
			}
			if !wasEscaped {
				if quoted && j+1 != len(raw) {
					return "", "", p.errorf("quotes end before the end of %q", raw)
				}
				if !quoted && b.Len() > 0 {
					return "", "", p.errorf("quotes start after the value begins in %q", raw)
				}
				quoted = !quoted
				usedQuotes = true
				continue
			}
		case '\t', '=', ' ':
			if !quoted {
				return "", "", p.errorf("invalid character %q outside quotes in %q", c, raw)
			}
		}
		b.WriteByte(c)
	}

	if quoted {
		return "", "", p.errorf("unterminated quotes in %q", raw)
	}
	if requireQuotes && !usedQuotes {
		return "", "", p.errorf("value %q must be quoted", raw)
	}

	return key, b.String(), nil
}

func (p *parser) atoi(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, p.errorf("malformed %s value %q", key, value)
	}
	return n, nil
}

func knownKey(key string) bool {
	switch key {
	case "state", "version", "width", "height", "dirs", "frames",
		"delay", "loop", "rewind", "movement", "hotspot":
		return true
	}
	return false
}
