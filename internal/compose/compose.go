// Package compose builds the suite an adapter runs for an upstream test
// module.
//
// Under the reference implementation the verdict list is ignored and the
// module runs exactly as default discovery finds it. Under the alternative
// implementation the verdict list is the conformance statement: only the
// tests it names run, in the order it names them, and every name must
// resolve.
package compose

import (
	"errors"
	"sort"

	"github.com/roach88/conform/internal/impl"
	"github.com/roach88/conform/internal/suite"
	"github.com/roach88/conform/internal/verdict"
)

// Compose returns the suite to run for mod.
//
// Under the alternative implementation every entry of verdicts is first
// validated against the discovered tests; unresolved and duplicate entries
// are reported together in one joined error and no suite is returned. The
// suite is then built in verdict order. Skipped entries are recorded as
// exclusions and never run. Tests the list does not mention are left out.
// pattern filters in both modes, and a malformed pattern is an error in
// both.
func Compose(loader *suite.Loader, mod *suite.Module, verdicts verdict.List, pattern string) (*suite.Suite, error) {
	if !impl.IsAlt() {
		return loader.LoadModule(mod, pattern)
	}
	if err := suite.ValidatePattern(pattern); err != nil {
		return nil, err
	}

	all, err := loader.Discover(mod, "")
	if err != nil {
		return nil, err
	}
	index := make(map[string]*suite.Case, all.Len())
	for _, t := range all.Tests() {
		c := t.(*suite.Case)
		index[c.ID()] = c
	}

	if err := validate(mod.Name, verdicts, index); err != nil {
		return nil, err
	}

	s := suite.NewSuite(mod.Name)
	for _, v := range verdicts.Entries {
		if !suite.Matches(pattern, v.Class, v.Method) {
			continue
		}
		c := index[v.ID()]
		switch v.Disposition {
		case verdict.Include:
			s.Add(c)
		case verdict.ExpectFail:
			s.Add(suite.ExpectFailure(c))
		case verdict.Skip:
			s.Exclude(v.ID(), v.Reason)
		}
	}
	return s, nil
}

func validate(module string, verdicts verdict.List, index map[string]*suite.Case) error {
	errs := verdicts.Validate()

	if verdicts.Module != "" && verdicts.Module != module {
		errs = append(errs, verdict.NewConfigError(verdict.ErrModuleMismatch, module,
			"verdict list is for module "+verdicts.Module, nil))
	}

	var unresolved []string
	for _, v := range verdicts.Entries {
		if v.Class == "" || v.Method == "" {
			continue
		}
		if _, ok := index[v.ID()]; !ok {
			unresolved = append(unresolved, v.ID())
		}
	}
	if len(unresolved) > 0 {
		errs = append([]error{verdict.NewConfigError(verdict.ErrUnresolvedEntry, module,
			"unresolved verdict entries", unresolved)}, errs...)
	}
	return errors.Join(errs...)
}

// Triage returns the IDs of tests in mod that verdicts does not mention,
// sorted. Under the alternative implementation these tests never run, so a
// non-empty result means new upstream tests are waiting for a verdict.
func Triage(loader *suite.Loader, mod *suite.Module, verdicts verdict.List) ([]string, error) {
	all, err := loader.Discover(mod, "")
	if err != nil {
		return nil, err
	}
	mentioned := make(map[string]bool, verdicts.Len())
	for _, v := range verdicts.Entries {
		mentioned[v.ID()] = true
	}
	var missing []string
	for _, id := range all.IDs() {
		if !mentioned[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
