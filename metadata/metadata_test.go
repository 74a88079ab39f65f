package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# BEGIN DMI
version = 4.0
	width = 32
	height = 32
state = "open"
	dirs = 1
	frames = 2
	delay = 1,1.5
state = "closed"
	dirs = 4
	frames = 1
	delay = 1
	movement = 1
	hotspot = 16,2,1
	future_key = whatever,0
# END DMI
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, Version{4, 0}, m.Version)
	assert.Equal(t, 32, m.Width)
	assert.Equal(t, 32, m.Height)
	require.Len(t, m.States, 2)

	open := m.States[0]
	assert.Equal(t, "open", open.Name)
	assert.Equal(t, 1, open.Dirs)
	assert.Equal(t, 2, open.Frames)
	assert.Equal(t, []float64{1, 1.5}, open.Delay)
	assert.False(t, open.Movement)
	assert.Nil(t, open.Hotspots)

	closed := m.States[1]
	assert.Equal(t, "closed", closed.Name)
	assert.Equal(t, 4, closed.Dirs)
	assert.True(t, closed.Movement)
	assert.Equal(t, []Hotspot{{X: 16, Y: 2, Frame: 1}}, closed.Hotspots)
	assert.Equal(t, []Setting{{Key: "future_key", Value: "whatever,0"}}, closed.Unknown)

	assert.Equal(t, 6, m.TotalFrames())
}

func TestParseDefaultSize(t *testing.T) {
	m, err := Parse([]byte("# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 1\n\tframes = 1\n# END DMI\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, m.Width)
	assert.Equal(t, DefaultSize, m.Height)
}

func TestParseQuoting(t *testing.T) {
	text := "# BEGIN DMI\nversion = 4.0\n\twidth = 32\n\theight = 32\nstate = \"a \\\"quoted\\\" \\\\ name\"\n\tdirs = 1\n\tframes = 1\n# END DMI\n"
	m, err := Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, m.States, 1)
	assert.Equal(t, `a "quoted" \ name`, m.States[0].Name)
}

func TestParseEmptyName(t *testing.T) {
	m, err := Parse([]byte("# BEGIN DMI\nversion = 4.0\nstate = \"\"\n\tdirs = 1\n\tframes = 1\n# END DMI\n"))
	require.NoError(t, err)
	require.Len(t, m.States, 1)
	assert.Equal(t, "", m.States[0].Name)
}

func TestParseErrors(t *testing.T) {
	tables := []struct {
		name string
		text string
	}{
		{"missing header", "version = 4.0\n# END DMI\n"},
		{"unquoted state name", "# BEGIN DMI\nversion = 4.0\nstate = open\n\tdirs = 1\n\tframes = 1\n# END DMI\n"},
		{"bad dirs", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 3\n\tframes = 1\n# END DMI\n"},
		{"missing dirs", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tframes = 1\n# END DMI\n"},
		{"zero frames", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 1\n\tframes = 0\n# END DMI\n"},
		{"delay length mismatch", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 1\n\tframes = 2\n\tdelay = 1\n# END DMI\n"},
		{"bad delay entry", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 1\n\tframes = 1\n\tdelay = fast\n# END DMI\n"},
		{"hotspot fields", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 1\n\tframes = 1\n\thotspot = 1,2\n# END DMI\n"},
		{"hotspot frame range", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 1\n\tframes = 1\n\thotspot = 1,2,5\n# END DMI\n"},
		{"zero width", "# BEGIN DMI\nversion = 4.0\n\twidth = 0\n\theight = 32\n# END DMI\n"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Parse([]byte(table.text))
			require.Error(t, err)

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "expected *SyntaxError, got %T: %v", err, err)
		})
	}
}

func TestParseSyntaxErrorContext(t *testing.T) {
	_, err := Parse([]byte("# BEGIN DMI\nversion = 4.0\nstate = \"door\"\n\tdirs = 3\n\tframes = 1\n# END DMI\n"))
	require.Error(t, err)

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 4, syntaxErr.Line)
	assert.Equal(t, "door", syntaxErr.State)
}

func TestParseTruncated(t *testing.T) {
	tables := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"header only", "# BEGIN DMI\n"},
		{"no trailer", "# BEGIN DMI\nversion = 4.0\n\twidth = 32\n\theight = 32\n"},
		{"truncated state", "# BEGIN DMI\nversion = 4.0\nstate = \"x\"\n\tdirs = 1\n"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Parse([]byte(table.text))
			assert.Equal(t, ErrUnexpectedEOF, err)
		})
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	_, err := Parse([]byte("# BEGIN DMI\nversion = 5.0\n# END DMI\n"))
	require.Error(t, err)

	var versionErr *VersionError
	require.True(t, errors.As(err, &versionErr))
	assert.Equal(t, "5.0", versionErr.Version)
}

func TestMarshalRoundTrip(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	text, err := m.MarshalText()
	require.NoError(t, err)

	again, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestMarshalDefaults(t *testing.T) {
	m := &Metadata{
		Version: Current,
		Width:   32,
		Height:  32,
		States: []*State{
			{Name: "still", Dirs: 1, Frames: 1},
		},
	}

	text, err := m.MarshalText()
	require.NoError(t, err)

	// dirs, frames and delay are always explicit; loop, rewind and
	// movement only appear when non-default.
	expected := "# BEGIN DMI\nversion = 4.0\n\twidth = 32\n\theight = 32\nstate = \"still\"\n\tdirs = 1\n\tframes = 1\n\tdelay = 1\n# END DMI\n"
	assert.Equal(t, expected, string(text))
}

func TestMarshalDelayMismatch(t *testing.T) {
	m := &Metadata{
		Version: Current,
		Width:   32,
		Height:  32,
		States: []*State{
			{Name: "x", Dirs: 1, Frames: 2, Delay: []float64{1}},
		},
	}

	_, err := m.MarshalText()
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	v, err := ParseVersion("4.0")
	require.NoError(t, err)
	assert.Equal(t, Version{4, 0}, v)
	assert.Equal(t, "4.0", v.String())

	_, err = ParseVersion("4")
	assert.Error(t, err)
}
