package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quicklinks/internal/state"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%s) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme_FallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestThemesDefineEverySourceColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, source := range []state.Source{state.SourceOverride, state.SourceCache, state.SourceFallback} {
			if th.Sources[source] == "" {
				t.Fatalf("%s: missing source color for %q", name, source)
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"https://example.com/path", 10, "https:/..."},
		{"  padded  ", 0, "padded"},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestSourceStyle_UnknownSourceIsMuted(t *testing.T) {
	th := GetTheme("Kanagawa")
	styles := th.Styles()
	if got := styles.SourceStyle(state.SourceCache).GetBackground(); got != lipgloss.Color(th.Sources[state.SourceCache]) {
		t.Fatalf("cache badge background = %v", got)
	}
	if got := styles.SourceStyle("remote").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("unknown badge background = %v, want muted %s", got, th.Muted)
	}
}

func TestWithBackground_PaintsTextStyles(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles().WithBackground(th.Surface)
	for name, st := range map[string]lipgloss.Style{
		"text":   styles.Text,
		"muted":  styles.MutedText,
		"accent": styles.AccentText,
		"logo":   styles.Logo,
	} {
		if got := st.GetBackground(); got != lipgloss.Color(th.Surface) {
			t.Fatalf("%s background = %v, want %s", name, got, th.Surface)
		}
	}
	if got := styles.Selected.GetBackground(); got != lipgloss.Color(th.SelectionBg) {
		t.Fatalf("selected background changed to %v", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("cache", 8); got != "cache   " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("fallback", 4); got != "fallback" {
		t.Fatalf("padRight = %q", got)
	}
}
