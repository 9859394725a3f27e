package engine

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mmr-tortoise/burnish/internal/config"
	"github.com/mmr-tortoise/burnish/internal/filter"
	"github.com/mmr-tortoise/burnish/internal/model"
	"github.com/mmr-tortoise/burnish/internal/paths"
	"github.com/mmr-tortoise/burnish/internal/ui"
)

// Engine orchestrates one action over one resolved file set. It is
// constructed once per invocation; all of its state is fixed at
// construction except the resolver's memoized result.
type Engine struct {
	cfg      *config.Config
	root     string
	resolver *paths.Resolver
	jobs     int
	printer  *ui.Printer
}

// New creates an Engine. jobs bounds the worker pool; zero or negative
// means one worker per available processor.
func New(cfg *config.Config, root string, resolver *paths.Resolver, jobs int, printer *ui.Printer) *Engine {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &Engine{
		cfg:      cfg,
		root:     root,
		resolver: resolver,
		jobs:     jobs,
		printer:  printer,
	}
}

// Tidy runs every tidy-capable filter over the resolved file set.
func (e *Engine) Tidy() (model.Exit, error) {
	filters, err := e.cfg.TidyFilters(e.root)
	if err != nil {
		return model.Exit{}, err
	}
	return e.runAction("Tidying", "tidying", filters, e.tidyWorker)
}

// Lint runs every lint-capable filter over the resolved file set.
func (e *Engine) Lint() (model.Exit, error) {
	filters, err := e.cfg.LintFilters(e.root)
	if err != nil {
		return model.Exit{}, err
	}
	return e.runAction("Linting", "linting", filters, e.lintWorker)
}

// runAction is the shared action driver. banner is the capitalized verb
// for the opening line, action the participle used in error messages and
// the final report.
//
// A filter's errors never abort subsequent filters; only configuration
// and environment errors (no filters, failed resolution) abort the run,
// and those happen before any filter executes.
func (e *Engine) runAction(
	banner, action string,
	filters []*filter.Filter,
	worker func(*filter.Filter, entry) *model.ActionError,
) (model.Exit, error) {
	e.printer.Banner(banner, e.resolver.Mode().Description())

	if len(filters) == 0 {
		return model.Exit{}, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("no %s commands defined in your config", action))
	}

	groups, err := e.resolver.Groups()
	if err != nil {
		return model.Exit{}, err
	}
	if len(groups) == 0 {
		return model.Exit{Status: 0, Message: "No files found"}, nil
	}

	var all []model.ActionError
	for _, f := range filters {
		// One filter at a time: its entries run in parallel below, but
		// the next filter only starts once this one's errors are merged.
		errs := e.runParallel(f, invocationEntries(f.RunMode, groups), worker)
		all = append(all, errs...)
	}

	if len(all) == 0 {
		return model.Exit{Status: 0}, nil
	}
	return model.Exit{
		Status: 1,
		Error:  e.printer.ErrorReport(action, all),
	}, nil
}

// entry is one unit of concurrency: a filter invocation target plus the
// full file list of its originating directory group as sibling context.
type entry struct {
	path  string
	files []string
}

// invocationEntries expands the resolved groups according to the run
// mode: Root collapses everything into one entry, Dirs maps groups
// one-to-one, and Files yields one entry per file while retaining its
// group's file list. The expansion reshapes the partition but never adds
// or drops files.
func invocationEntries(mode filter.RunMode, groups []model.PathGroup) []entry {
	switch mode {
	case filter.RunModeRoot:
		var all []string
		for _, g := range groups {
			all = append(all, g.Files...)
		}
		if len(all) == 0 {
			return nil
		}
		sort.Strings(all)
		return []entry{{path: ".", files: all}}

	case filter.RunModeDirs:
		entries := make([]entry, 0, len(groups))
		for _, g := range groups {
			entries = append(entries, entry{path: g.Dir, files: g.Files})
		}
		return entries

	default: // filter.RunModeFiles
		var entries []entry
		for _, g := range groups {
			for _, f := range g.Files {
				entries = append(entries, entry{path: f, files: g.Files})
			}
		}
		return entries
	}
}

// runParallel executes one filter's entries on the bounded pool. Each
// worker writes only to its own slot of the results slice; the merge into
// one list happens after Wait, so no locking is needed around individual
// errors.
func (e *Engine) runParallel(
	f *filter.Filter,
	entries []entry,
	worker func(*filter.Filter, entry) *model.ActionError,
) []model.ActionError {
	results := make([]*model.ActionError, len(entries))

	var g errgroup.Group
	g.SetLimit(e.jobs)
	for i, en := range entries {
		i, en := i, en
		g.Go(func() error {
			results[i] = worker(f, en)
			return nil
		})
	}
	// Workers never return errors; failures are captured in results.
	_ = g.Wait()

	var errs []model.ActionError
	for _, r := range results {
		if r != nil {
			errs = append(errs, *r)
		}
	}
	return errs
}

// tidyWorker runs one tidy invocation and translates its outcome into a
// status line and, on failure, an ActionError.
func (e *Engine) tidyWorker(f *filter.Filter, en entry) *model.ActionError {
	r, err := f.Tidy(en.path, en.files)
	if err != nil {
		e.printer.ExecError(f.Name, en.path)
		return &model.ActionError{Path: en.path, Filter: f.ConfigKey(), Message: err.Error()}
	}
	if r == nil {
		return nil
	}
	if r.Changed {
		e.printer.Tidied(f.Name, en.path)
	} else {
		e.printer.Unchanged(f.Name, en.path)
	}
	return nil
}

// lintWorker runs one lint invocation. A finding (Ok=false) and an
// execution error both produce an ActionError, but with distinct
// messages so the report separates "failed" from "errored".
func (e *Engine) lintWorker(f *filter.Filter, en entry) *model.ActionError {
	r, err := f.Lint(en.path, en.files)
	if err != nil {
		e.printer.ExecError(f.Name, en.path)
		return &model.ActionError{Path: en.path, Filter: f.ConfigKey(), Message: err.Error()}
	}
	if r == nil {
		return nil
	}
	if r.Ok {
		e.printer.Passed(f.Name, en.path)
		return nil
	}
	e.printer.Failed(f.Name, en.path, r.Stdout, r.Stderr)
	return &model.ActionError{Path: en.path, Filter: f.ConfigKey(), Message: "linting failed"}
}
