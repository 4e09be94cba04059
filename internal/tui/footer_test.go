package tui

import (
	"strings"
	"testing"

	"github.com/Larshalvorhansen/termType/internal/engine"
)

func TestRenderFooterFormats(t *testing.T) {
	session, err := engine.NewSession([]string{"abcd"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := &Model{
		session: session,
		hasLast: true,
		lastWPM: 72,
		lastAcc: 98,
		allWPM:  68,
		allAcc:  97,
	}
	m.Update(key("a"))
	m.Update(key("x"))
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Progress 50%", "Mistakes 1", "Last 72 WPM · 98%", "All-time 68 WPM · 97%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWithoutHistory(t *testing.T) {
	session, err := engine.NewSession([]string{"abcd"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	out := NewModel(session, nil, "").renderFooter()
	if strings.Contains(out, "Last") || strings.Contains(out, "All-time") {
		t.Fatalf("unexpected history segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
