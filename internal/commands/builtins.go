package commands

import (
	"context"
	"fmt"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/session"
)

func builtins() []Command {
	cmds := []Command{
		display("open", "Show the outline panel", func(s *config.DisplayState) { s.PanelOpen = true }),
		display("hide", "Hide the outline panel", func(s *config.DisplayState) { s.PanelOpen = false }),
		display("toggle", "Toggle the outline panel", func(s *config.DisplayState) { s.PanelOpen = !s.PanelOpen }),

		document("next-node", "Move the cursor to the next shown node", navigate(1)),
		document("previous-node", "Move the cursor to the previous shown node", navigate(-1)),

		document("fold-toggle", "Fold or unfold the section at the cursor", foldToggle),
		document("fold-section", "Fold the innermost section at the cursor", foldSection(0)),
		document("fold-as-table", "Fold every section", foldTable("")),
		document("fold-all-infos", "Fold every info section", foldTable(outline.TagInfo)),
		document("fold-all-successes", "Fold every success section", foldTable(outline.TagSuccess)),
		document("fold-all-warnings", "Fold every warning section", foldTable(outline.TagWarning)),
		document("fold-all-errors", "Fold every error section", foldTable(outline.TagError)),
		document("unfold", "Unfold the section at the cursor", unfold),
		document("unfold-all", "Unfold everything", unfoldAll),

		categories("all-categories", "Show every category", outline.Categories, boolPtr(true)),
		categories("none-categories", "Hide every category", outline.Categories, boolPtr(false)),
		categories("categories-toggle", "Flip every category", outline.Categories, nil),

		display("text-wrap-toggle", "Toggle text wrapping", func(s *config.DisplayState) { s.TextWrap = !s.TextWrap }),
		display("search-bar-toggle", "Toggle the search bar", func(s *config.DisplayState) { s.SearchBar = !s.SearchBar }),
		display("category-bar-toggle", "Toggle the category bar", func(s *config.DisplayState) { s.CategoryBar = !s.CategoryBar }),
		{Name: "search", Description: "Show the search bar and filter the outline", Run: runSearch},
		{Name: "clear", Description: "Clear the search query", Run: clearSearch},
		{Name: "markers-toggle", Description: "Toggle heading line markers", Run: markersToggle},

		display("collapse-mode", "Show only root nodes", func(s *config.DisplayState) { s.Tree = config.TreeCollapse }),
		display("expand-mode", "Show every node", func(s *config.DisplayState) { s.Tree = config.TreeExpand }),
		display("auto-collapse", "Show children along the cursor path", func(s *config.DisplayState) { s.Tree = config.TreeAuto }),
	}
	for depth := 1; depth <= 9; depth++ {
		cmds = append(cmds, document(
			fmt.Sprintf("fold-section-at-%d", depth),
			fmt.Sprintf("Fold the depth %d section at the cursor", depth),
			foldSection(depth),
		))
	}
	for _, c := range outline.Categories {
		cmds = append(cmds, categories(c+"-toggle", "Toggle the "+c+" category", []string{c}, nil))
	}
	return cmds
}

func boolPtr(v bool) *bool { return &v }

func display(name, desc string, fn func(*config.DisplayState)) Command {
	return Command{Name: name, Description: desc, Run: func(_ context.Context, env Env) (Result, error) {
		st := env.Display.Update(fn)
		return Result{Display: &st}, nil
	}}
}

func document(name, desc string, run Handler) Command {
	return Command{Name: name, Description: desc, Document: true, Run: run}
}

func categories(name, desc string, names []string, value *bool) Command {
	return Command{Name: name, Description: desc, Run: func(_ context.Context, env Env) (Result, error) {
		st := env.Display.SetCategories(names, value)
		return Result{Display: &st}, nil
	}}
}

// cursor returns the acting cursor: the named one, else the top-most.
func cursor(env Env) (*session.Cursor, error) {
	if env.CursorID != "" {
		return env.Session.Cursor(env.CursorID)
	}
	cs := env.Session.Cursors()
	if len(cs) == 0 {
		return nil, session.ErrNoCursor
	}
	return env.Session.Cursor(cs[0].ID)
}

// row returns the acting cursor's row. Without cursors it is 0.
func row(env Env) (int, error) {
	if env.CursorID == "" {
		return env.Session.PrimaryRow(), nil
	}
	c, err := env.Session.Cursor(env.CursorID)
	if err != nil {
		return 0, err
	}
	return c.State().Row, nil
}

func navigate(dir int) Handler {
	return func(_ context.Context, env Env) (Result, error) {
		c, err := cursor(env)
		if err != nil {
			return Result{}, err
		}
		n, err := c.Navigate(dir, env.Display.Snapshot())
		if err != nil {
			return Result{}, err
		}
		return Result{Node: n}, nil
	}
}

func foldToggle(_ context.Context, env Env) (Result, error) {
	r, err := row(env)
	if err != nil {
		return Result{}, err
	}
	folded := env.Session.Toggle(r)
	return Result{Folded: &folded, Folds: env.Session.Folds()}, nil
}

func foldSection(depth int) Handler {
	return func(_ context.Context, env Env) (Result, error) {
		r, err := row(env)
		if err != nil {
			return Result{}, err
		}
		rng, ok := env.Session.FoldAt(r, depth)
		if !ok {
			return Result{}, nil
		}
		return Result{Folds: []fold.Range{rng}}, nil
	}
}

func foldTable(tag string) Handler {
	return func(_ context.Context, env Env) (Result, error) {
		return Result{Folds: env.Session.FoldAsTable(tag)}, nil
	}
}

func unfold(_ context.Context, env Env) (Result, error) {
	r, err := row(env)
	if err != nil {
		return Result{}, err
	}
	env.Session.Unfold(r)
	return Result{Folds: env.Session.Folds()}, nil
}

func unfoldAll(_ context.Context, env Env) (Result, error) {
	env.Session.UnfoldAll()
	return Result{}, nil
}

// runSearch shows the search bar. With a query it becomes the session's
// active search; without one the active search is reported unchanged.
func runSearch(_ context.Context, env Env) (Result, error) {
	st := env.Display.Update(func(s *config.DisplayState) { s.SearchBar = true })
	res := Result{Display: &st}
	if env.Session == nil {
		return res, nil
	}
	q := env.Query
	if q == "" {
		q = env.Session.Query()
		res.Search = env.Session.Search(q)
	} else {
		results, err := env.Session.SetQuery(q)
		if err != nil {
			return Result{}, err
		}
		res.Search = results
	}
	res.Query = &q
	return res, nil
}

func clearSearch(_ context.Context, env Env) (Result, error) {
	q := ""
	if env.Session != nil {
		if _, err := env.Session.SetQuery(q); err != nil {
			return Result{}, err
		}
	}
	return Result{Query: &q}, nil
}

func markersToggle(_ context.Context, env Env) (Result, error) {
	st := env.Display.Update(func(s *config.DisplayState) { s.Markers = !s.Markers })
	res := Result{Display: &st}
	if st.Markers && env.Session != nil {
		res.Markers = env.Session.Markers()
	}
	return res, nil
}
