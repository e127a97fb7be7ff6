package planner

import "github.com/compotron/compose/internal/tactic"

// catalogue is the portable stand-in for the original's dynamic
// dotted-path tactic loading (spec.md §9 "Custom tactic loading"): a
// layer's `tactics:` entries name classes from this fixed, compiled-in
// set rather than arbitrary source loaded at runtime. Unrecognised names
// are dropped with a planner warning rather than failing the plan.
var catalogue = map[string]func() tactic.Class{
	"copy":      func() tactic.Class { return &tactic.CopyClass{} },
	"metadata":  func() tactic.Class { return &tactic.MetadataYAMLClass{} },
	"config":    func() tactic.Class { return &tactic.ConfigYAMLClass{} },
	"composer":  func() tactic.Class { return &tactic.ComposerYAMLClass{} },
	"hook":      func() tactic.Class { return &tactic.HookClass{} },
	"action":    func() tactic.Class { return &tactic.ActionClass{} },
	"installer": func() tactic.Class { return &tactic.InstallerClass{} },
	"manifest":  func() tactic.Class { return &tactic.ManifestClass{} },
}

// resolveCustomTactics maps a layer's `tactics:` names onto catalogue
// entries, returning the names that could not be resolved as warnings.
func resolveCustomTactics(names []string) ([]tactic.Class, []string) {
	var classes []tactic.Class
	var unresolved []string
	for _, name := range names {
		if factory, ok := catalogue[name]; ok {
			classes = append(classes, factory())
		} else {
			unresolved = append(unresolved, name)
		}
	}
	return classes, unresolved
}
