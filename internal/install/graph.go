// Package install turns resolved components into phased task sets and runs
// them.
package install

import (
	"path/filepath"

	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/task"
)

// Layout holds the directories an installation writes to.
type Layout struct {
	WorkDir     string
	BinariesDir string
	ScriptsDir  string
}

// Repository is a git repository cloned after installation. Dir is relative to
// the working directory.
type Repository struct {
	URL string
	Dir string
}

// Removal deletes a component directory left over from a previous run.
type Removal struct {
	Name string
	Dir  string
}

// Download fetches a component distribution into the binaries directory.
type Download struct {
	Name   string
	URL    string
	Path   string
	Digest string
}

// Extraction unpacks a downloaded archive.
type Extraction struct {
	Name    string
	Archive string
	Target  string
	// Label is the target as configured, relative to the working directory.
	Label string
}

// Step is one post-install action.
type Step struct {
	Name   string
	Action string
	Run    task.Func
}

// Chain is the ordered actions of one component.
type Chain struct {
	Name  string
	Steps []Step
}

// ScriptFile is a startup script to write.
type ScriptFile struct {
	Name     string
	Path     string
	Filename string
	Content  string
}

// Clone is a repository checkout.
type Clone struct {
	URL string
	Dir string
}

// Plan is the phased work of one installation. Phases run in field order.
type Plan struct {
	Removals    []Removal
	Downloads   []Download
	Extractions []Extraction
	Chains      []Chain
	Scripts     []ScriptFile
	Clones      []Clone
}

// BuildPlan derives the phases from installable descriptors in the given
// order. Descriptors with Install unset are skipped.
func BuildPlan(descriptors []*component.Descriptor, layout Layout, repos ...Repository) Plan {
	var p Plan
	for _, d := range descriptors {
		if !d.Install {
			continue
		}
		if d.DirectoryName != "" {
			p.Removals = append(p.Removals, Removal{
				Name: d.Name,
				Dir:  filepath.Join(layout.WorkDir, d.DirectoryName),
			})
		}
		if d.DownloadURL != "" {
			p.Downloads = append(p.Downloads, Download{
				Name:   d.Name,
				URL:    d.DownloadURL,
				Path:   filepath.Join(layout.BinariesDir, d.ArchiveFilename),
				Digest: d.Digest,
			})
		}
		if d.IsArchive {
			e := Extraction{
				Name:    d.Name,
				Archive: filepath.Join(layout.BinariesDir, d.ArchiveFilename),
				Target:  layout.WorkDir,
				Label:   layout.WorkDir,
			}
			if d.ExtractTarget != "" {
				e.Target = filepath.Join(layout.WorkDir, d.ExtractTarget)
				e.Label = d.ExtractTarget
			}
			p.Extractions = append(p.Extractions, e)
		}
		if len(d.Actions) > 0 {
			p.Chains = append(p.Chains, ChainOf(d))
		}
		if d.StartupScript != nil {
			p.Scripts = append(p.Scripts, ScriptFile{
				Name:     d.Name,
				Path:     filepath.Join(layout.ScriptsDir, d.StartupScript.Filename),
				Filename: d.StartupScript.Filename,
				Content:  d.StartupScript.Content,
			})
		}
	}
	for _, r := range repos {
		p.Clones = append(p.Clones, Clone{URL: r.URL, Dir: filepath.Join(layout.WorkDir, r.Dir)})
	}
	return p
}

// ChainOf returns the actions of d as one chain.
func ChainOf(d *component.Descriptor) Chain {
	c := Chain{Name: d.Name}
	for _, a := range d.Actions {
		c.Steps = append(c.Steps, Step{Name: d.Name, Action: a.Name, Run: a.Run})
	}
	return c
}

// Steps returns every action of every chain, chain by chain.
func (p Plan) Steps() []Step {
	var steps []Step
	for _, c := range p.Chains {
		steps = append(steps, c.Steps...)
	}
	return steps
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.Removals)+len(p.Downloads)+len(p.Extractions)+len(p.Chains)+len(p.Scripts)+len(p.Clones) == 0
}
