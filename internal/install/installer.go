package install

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/pirakansa/appstack/internal/cli/execrun"
	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/coordinator"
	"github.com/pirakansa/appstack/internal/task"
)

// Installer runs a Plan phase by phase.
type Installer struct {
	Layout      Layout
	Client      *http.Client
	Runner      execrun.Runner
	Coordinator *coordinator.Coordinator
	Logger      *log.Logger
}

// Install runs every phase for the installable components of set and clones
// repos. It returns the validated options of every configured component.
// The first failing task ends the run; tasks already in flight keep running.
func (in *Installer) Install(ctx context.Context, set *component.Set, repos []Repository) (map[string]component.Options, error) {
	plan := BuildPlan(set.Descriptors, in.Layout, repos...)
	if err := in.Run(ctx, plan); err != nil {
		return nil, err
	}
	return set.Options(), nil
}

// Run executes the phases of plan in order.
func (in *Installer) Run(ctx context.Context, plan Plan) error {
	phases := []struct {
		title string
		run   func(context.Context, Plan) error
	}{
		{TitleRemove, in.removeDirs},
		{TitleDownload, in.download},
		{TitleExtract, in.extract},
		{TitleActions, in.runActions},
		{TitleScripts, in.writeScripts},
		{TitleClone, in.clone},
	}
	for _, phase := range phases {
		in.logger().Debug("phase", "title", phase.title)
		if err := phase.run(ctx, plan); err != nil {
			in.logger().Error("phase failed", "title", phase.title, "err", err)
			return err
		}
	}
	return nil
}

func (in *Installer) logger() *log.Logger {
	if in.Logger == nil {
		return log.Default()
	}
	return in.Logger
}

func (in *Installer) removeDirs(ctx context.Context, plan Plan) error {
	fns := make([]task.Func, len(plan.Removals))
	for i, r := range plan.Removals {
		fns[i] = labelled(r.Name, RemoveTask(r))
	}
	_, err := in.Coordinator.Run(ctx, TitleRemove, fns, formatRemoval(plan.Removals))
	return err
}

func (in *Installer) download(ctx context.Context, plan Plan) error {
	fetcher := &Fetcher{Client: in.Client}
	fns := make([]task.Func, len(plan.Downloads))
	for i, d := range plan.Downloads {
		fns[i] = labelled(d.Name, fetcher.Task(d))
	}
	_, err := in.Coordinator.Run(ctx, TitleDownload, fns, formatDownload(plan.Downloads))
	return err
}

func (in *Installer) extract(ctx context.Context, plan Plan) error {
	fns := make([]task.Func, len(plan.Extractions))
	for i, e := range plan.Extractions {
		fns[i] = labelled(e.Name, ExtractTask(e))
	}
	_, err := in.Coordinator.Run(ctx, TitleExtract, fns, formatExtraction(plan.Extractions))
	return err
}

// runActions starts one chain per component and waits on every action handle.
func (in *Installer) runActions(ctx context.Context, plan Plan) error {
	var handles []*task.Handle
	for _, c := range plan.Chains {
		fns := make([]task.Func, len(c.Steps))
		for i, s := range c.Steps {
			fns[i] = labelled(s.Name+" | "+s.Action, s.Run)
		}
		handles = append(handles, task.Chain(ctx, fns)...)
	}
	_, err := in.Coordinator.Await(ctx, TitleActions, handles, formatStep(plan.Steps()))
	return err
}

func (in *Installer) writeScripts(ctx context.Context, plan Plan) error {
	fns := make([]task.Func, len(plan.Scripts))
	for i, s := range plan.Scripts {
		fns[i] = labelled(s.Name, ScriptTask(s, in.Layout.WorkDir))
	}
	_, err := in.Coordinator.Run(ctx, TitleScripts, fns, formatScript(plan.Scripts))
	return err
}

func (in *Installer) clone(ctx context.Context, plan Plan) error {
	fns := make([]task.Func, len(plan.Clones))
	for i, c := range plan.Clones {
		fns[i] = labelled(c.URL, CloneTask(c, in.Runner))
	}
	_, err := in.Coordinator.Run(ctx, TitleClone, fns, formatClone(plan.Clones))
	return err
}
