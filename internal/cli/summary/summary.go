// Package summary prints the parameter and plan overviews shown before work
// starts.
package summary

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/list"

	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/install"
)

const (
	colorHeading = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
)

type styles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(colorHeading),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

func newList(w io.Writer) list.Writer {
	l := list.NewWriter()
	l.SetOutputMirror(w)
	l.SetStyle(list.StyleConnectedRounded)
	return l
}

// Parameters prints the installation directories, every component with its
// options in presentation order, and the repositories. Null values and empty
// objects are left out.
func Parameters(w io.Writer, layout install.Layout, set *component.Set, repos []install.Repository) {
	st := newStyles(w)
	fmt.Fprintln(w, st.heading.Render("- Parameters"))

	l := newList(w)
	l.AppendItem("Installation dir: " + layout.WorkDir)
	l.AppendItem("Binaries dir: " + layout.BinariesDir)
	for _, d := range set.Descriptors {
		name := d.Name
		if !d.Install {
			name += " " + st.muted.Render("(not installed)")
		}
		l.AppendItem(name)
		l.Indent()
		for _, key := range d.SortedKeys() {
			appendValue(l, key, d.Options[key])
		}
		l.UnIndent()
	}
	if len(repos) > 0 {
		l.AppendItem("Repositories")
		l.Indent()
		for _, r := range repos {
			item := r.URL
			if r.Dir != "" {
				item += " (" + r.Dir + ")"
			}
			l.AppendItem(item)
		}
		l.UnIndent()
	}
	l.Render()
	fmt.Fprintln(w)
}

func appendValue(l list.Writer, key string, value any) {
	switch v := value.(type) {
	case nil:
	case map[string]any:
		if len(v) == 0 {
			return
		}
		l.AppendItem(key)
		l.Indent()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendValue(l, k, v[k])
		}
		l.UnIndent()
	default:
		l.AppendItem(key + ": " + Format(v))
	}
}

// Format renders an option value for display.
func Format(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Format(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// Plan prints the phases of p with one item per task.
func Plan(w io.Writer, p install.Plan) {
	st := newStyles(w)
	fmt.Fprintln(w, st.heading.Render("- Plan"))
	if p.Empty() {
		fmt.Fprintln(w, st.muted.Render("nothing to install"))
		return
	}

	l := newList(w)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		l.AppendItem(fmt.Sprintf("%s (%d)", title, len(items)))
		l.Indent()
		for _, item := range items {
			l.AppendItem(item)
		}
		l.UnIndent()
	}

	var items []string
	for _, r := range p.Removals {
		items = append(items, r.Name+" => "+r.Dir)
	}
	section(install.TitleRemove, items)

	items = nil
	for _, d := range p.Downloads {
		items = append(items, d.Name+" => "+d.URL)
	}
	section(install.TitleDownload, items)

	items = nil
	for _, e := range p.Extractions {
		items = append(items, e.Name+" => "+e.Label)
	}
	section(install.TitleExtract, items)

	if len(p.Chains) > 0 {
		l.AppendItem(fmt.Sprintf("%s (%d)", install.TitleActions, len(p.Steps())))
		l.Indent()
		for _, c := range p.Chains {
			l.AppendItem(c.Name)
			l.Indent()
			for i, s := range c.Steps {
				l.AppendItem(fmt.Sprintf("%d. %s", i+1, s.Action))
			}
			l.UnIndent()
		}
		l.UnIndent()
	}

	items = nil
	for _, s := range p.Scripts {
		items = append(items, s.Name+" => "+s.Filename)
	}
	section(install.TitleScripts, items)

	items = nil
	for _, c := range p.Clones {
		items = append(items, c.URL)
	}
	section(install.TitleClone, items)

	l.Render()
	fmt.Fprintln(w)
}

// Installed prints the configured versions after a successful run.
func Installed(w io.Writer, options map[string]component.Options) {
	st := newStyles(w)
	fmt.Fprintln(w, st.heading.Render("- Installed"))
	ids := make([]string, 0, len(options))
	for id := range options {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	l := newList(w)
	for _, id := range ids {
		l.AppendItem(id + ": " + options[id].String("version"))
	}
	l.Render()
	fmt.Fprintln(w)
}
