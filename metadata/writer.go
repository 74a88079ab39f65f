package metadata

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

var nameEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func formatDelay(d float64) string {
	return strconv.FormatFloat(d, 'g', -1, 64)
}

// MarshalText renders the metadata block in the exact grammar the
// format's consumers expect. States are written in declaration order.
// The dirs, frames and delay settings are always explicit; loop,
// rewind and movement are omitted when they hold their defaults.
func (m *Metadata) MarshalText() ([]byte, error) {
	b := new(bytes.Buffer)

	fmt.Fprintf(b, "%s\nversion = %s\n\twidth = %d\n\theight = %d\n", header, m.Version, m.Width, m.Height)

	for _, s := range m.States {
		if !ValidDirs(s.Dirs) {
			return nil, fmt.Errorf("metadata: state %q: dirs must be 1, 4 or 8, found %d", s.Name, s.Dirs)
		}
		if s.Frames < 1 {
			return nil, fmt.Errorf("metadata: state %q: frames must be at least 1, found %d", s.Name, s.Frames)
		}

		delay := s.Delay
		if delay == nil {
			delay = make([]float64, s.Frames)
			for i := range delay {
				delay[i] = 1
			}
		}
		if len(delay) != s.Frames {
			return nil, fmt.Errorf("metadata: state %q: delay has %d entries for %d frames", s.Name, len(delay), s.Frames)
		}

		fmt.Fprintf(b, "state = \"%s\"\n", nameEscaper.Replace(s.Name))
		fmt.Fprintf(b, "\tdirs = %d\n\tframes = %d\n", s.Dirs, s.Frames)

		entries := make([]string, len(delay))
		for i, d := range delay {
			entries[i] = formatDelay(d)
		}
		fmt.Fprintf(b, "\tdelay = %s\n", strings.Join(entries, ","))

		if s.Loop > 0 {
			fmt.Fprintf(b, "\tloop = %d\n", s.Loop)
		}
		if s.Rewind {
			b.WriteString("\trewind = 1\n")
		}
		if s.Movement {
			b.WriteString("\tmovement = 1\n")
		}
		for _, h := range s.Hotspots {
			fmt.Fprintf(b, "\thotspot = %d,%d,%d\n", h.X, h.Y, h.Frame)
		}
		for _, u := range s.Unknown {
			fmt.Fprintf(b, "\t%s = %s\n", u.Key, u.Value)
		}
	}

	b.WriteString(trailer + "\n")

	return b.Bytes(), nil
}
