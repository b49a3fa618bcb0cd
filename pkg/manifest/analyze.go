package manifest

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/easydep/easydep/pkg/workspace"
)

// Conflict records a dependency whose version requirement differs across
// modules. Consolidation still proceeds with the representative; the
// conflict is surfaced so a human can judge compatibility from the diff.
type Conflict struct {
	Name           string
	Representative string
	Others         []string // distinct differing requirements, in occurrence order
}

// FindCommon counts registry-sourced dependencies across the module
// inventory and returns the ones declared in at least minOccurrences
// modules, mapped to their representative version requirement.
//
// The representative is the requirement of the occurrence at which the
// count first reaches the threshold, and later occurrences never replace
// it. Modules demanding different requirements are reported as conflicts,
// not reconciled. Path- and git-sourced declarations never count.
func FindCommon(modules []workspace.Module, minOccurrences int) (map[string]string, []Conflict) {
	counts := make(map[string]int)
	common := make(map[string]string)
	reqs := make(map[string][]string) // registry requirements in occurrence order

	for _, m := range modules {
		for _, dep := range m.Dependencies {
			if dep.Source != workspace.SourceRegistry {
				continue
			}
			counts[dep.Name]++
			reqs[dep.Name] = append(reqs[dep.Name], dep.Req)
			if counts[dep.Name] >= minOccurrences {
				if _, ok := common[dep.Name]; !ok {
					common[dep.Name] = dep.Req
				}
			}
		}
	}

	var conflicts []Conflict
	for _, name := range sortedKeys(common) {
		rep := common[name]
		var others []string
		seen := map[string]bool{}
		for _, req := range reqs[name] {
			if requirementsEqual(req, rep) || seen[req] {
				continue
			}
			seen[req] = true
			others = append(others, req)
		}
		if len(others) > 0 {
			conflicts = append(conflicts, Conflict{Name: name, Representative: rep, Others: others})
		}
	}
	return common, conflicts
}

// requirementsEqual reports whether two requirement strings denote the
// same constraint. Cargo treats a bare requirement as a caret requirement,
// so "1.0" and "^1.0" compare equal. Requirements that do not parse as
// semver constraints fall back to exact string comparison.
func requirementsEqual(a, b string) bool {
	if a == b {
		return true
	}
	na, nb := normalizeReq(a), normalizeReq(b)
	if na == nb {
		return true
	}
	ca, errA := semver.NewConstraint(na)
	cb, errB := semver.NewConstraint(nb)
	if errA != nil || errB != nil {
		return false
	}
	return ca.String() == cb.String()
}

func normalizeReq(req string) string {
	return strings.TrimPrefix(strings.TrimSpace(req), "^")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
