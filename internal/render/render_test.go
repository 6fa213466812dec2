package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatFrame(t *testing.T) {
	got := FormatFrame(Frame{
		Title:     "Extracting archives",
		Completed: 1,
		Total:     3,
		Lines: []Line{
			{State: Completed, Text: "Wildfly => wildfly-20.0.1.Final"},
			{State: Pending, Text: "Keycloak"},
			{State: Failed, Text: "MongoDB"},
		},
	})
	want := "Extracting archives: 1 / 3\n" +
		"    [X] Wildfly => wildfly-20.0.1.Final\n" +
		"    [ ] Keycloak\n" +
		"    [!] MongoDB\n" +
		"\n"
	if got != want {
		t.Fatalf("unexpected frame:\n%q\nwant:\n%q", got, want)
	}
}

func TestDrawInPlaceOverwritesPreviousFrame(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithInPlace(true))

	first := Frame{Title: "Run", Total: 2, Lines: []Line{{Text: "a"}, {Text: "b"}}}
	r.Draw(first)
	if strings.Contains(buf.String(), cursorUp) {
		t.Fatalf("first frame must not move the cursor: %q", buf.String())
	}

	buf.Reset()
	second := Frame{Title: "Run", Completed: 1, Total: 2, Lines: []Line{{State: Completed, Text: "a"}, {Text: "b"}}}
	r.Draw(second)
	wantPrefix := strings.Repeat(cursorUp+clearLine, 4)
	if !strings.HasPrefix(buf.String(), wantPrefix) {
		t.Fatalf("expected redraw to clear 4 lines, got %q", buf.String())
	}
	if !strings.HasSuffix(buf.String(), FormatFrame(second)) {
		t.Fatalf("expected second frame after cursor control, got %q", buf.String())
	}
}

func TestDrawStartsFreshForNewPhase(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithInPlace(true))
	r.Draw(Frame{Title: "Download", Total: 1, Lines: []Line{{Text: "a"}}})
	r.Finish()

	buf.Reset()
	r.Draw(Frame{Title: "Extract", Total: 1, Lines: []Line{{Text: "a"}}})
	if strings.Contains(buf.String(), cursorUp) {
		t.Fatalf("a new phase must not overwrite the previous one: %q", buf.String())
	}
}

func TestDrawAppendModeSkipsProgressOnlyFrames(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithInPlace(false))

	r.Draw(Frame{Title: "Download", Total: 1, Lines: []Line{{Text: "a"}}})
	r.Draw(Frame{Title: "Download", Total: 1, Lines: []Line{{Text: "a => 10%"}}})
	r.Draw(Frame{Title: "Download", Completed: 1, Total: 1, Lines: []Line{{State: Completed, Text: "a => done"}}})

	out := buf.String()
	if strings.Contains(out, "10%") {
		t.Fatalf("progress-only frame must be skipped in append mode: %q", out)
	}
	if strings.Count(out, "Download:") != 2 {
		t.Fatalf("expected two frames, got %q", out)
	}
	if strings.Contains(out, cursorUp) {
		t.Fatalf("append mode must not use cursor control: %q", out)
	}
}

func TestDrawAppendModeWritesFailedFrame(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithInPlace(false))

	r.Draw(Frame{Title: "Download", Total: 2, Lines: []Line{{Text: "a"}, {Text: "b"}}})
	r.Draw(Frame{Title: "Download", Total: 2, Lines: []Line{{State: Failed, Text: "a"}, {Text: "b"}}})

	out := buf.String()
	if strings.Count(out, "Download: 0 / 2") != 2 {
		t.Fatalf("expected the failure to produce a second frame, got %q", out)
	}
	if !strings.Contains(out, "    [!] a\n") {
		t.Fatalf("expected failed line, got %q", out)
	}
}

func TestIsTerminalFalseForBuffer(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatalf("buffer is not a terminal")
	}
}
