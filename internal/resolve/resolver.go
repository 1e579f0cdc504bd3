// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/servicecmd/servicecmd/internal/registry"
	"github.com/servicecmd/servicecmd/internal/report"
	"github.com/servicecmd/servicecmd/pkg/servicedef"
)

const (
	// CodeUnknownGroup is reported for a selected group missing from the registry.
	CodeUnknownGroup DiagnosticCode = "unknown_group"
	// CodeEmptyGroup is reported for a selected group whose patterns match no file.
	CodeEmptyGroup DiagnosticCode = "empty_group"
	// CodeIncludeUnmatched is reported for an include pattern that matched nothing.
	CodeIncludeUnmatched DiagnosticCode = "include_unmatched"
)

// ErrNoMatch is the sentinel error wrapped by NoMatchError.
var ErrNoMatch = errors.New("no service matched the selection")

type (
	// ResolvedFile is the absolute path of a project file selected for execution.
	ResolvedFile string

	// DiagnosticCode identifies a kind of non-fatal resolution problem.
	DiagnosticCode string

	// Diagnostic is a non-fatal problem found while resolving a Selection.
	Diagnostic struct {
		Code    DiagnosticCode
		Message string
		// Subject is the group name or pattern the diagnostic is about.
		Subject string
	}

	// Resolution is the outcome of a successful Resolve.
	Resolution struct {
		// Files is non-empty, duplicate-free and in first-discovered order.
		Files       []ResolvedFile
		Diagnostics []Diagnostic
	}

	// NoMatchError is returned when a Selection resolves to no file.
	NoMatchError struct {
		Groups  []string
		Include []string
		Exclude []string
		Direct  []string
	}

	// Resolver turns a Selection into the concrete set of project files.
	Resolver struct {
		Registry registry.Registry
		Matcher  Matcher
		// Reporter receives warnings as they are found. Optional.
		Reporter report.Reporter
	}

	// resolution holds the per-call state of Resolve.
	resolution struct {
		r     *Resolver
		defs  map[string]servicedef.ServiceDefinition
		cache map[string][]ResolvedFile
		diags []Diagnostic
	}
)

func (e *NoMatchError) Error() string {
	var parts []string
	if len(e.Groups) > 0 {
		parts = append(parts, "services "+strings.Join(e.Groups, ", "))
	}
	if len(e.Direct) > 0 {
		parts = append(parts, "patterns "+strings.Join(e.Direct, ", "))
	}
	if len(e.Include) > 0 {
		parts = append(parts, "including "+strings.Join(e.Include, ", "))
	}
	if len(e.Exclude) > 0 {
		parts = append(parts, "excluding "+strings.Join(e.Exclude, ", "))
	}
	if len(parts) == 0 {
		return ErrNoMatch.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrNoMatch, strings.Join(parts, "; "))
}

// Unwrap returns ErrNoMatch for errors.Is() compatibility.
func (e *NoMatchError) Unwrap() error { return ErrNoMatch }

// Resolve runs the resolution stages in order: group selection, direct
// patterns over the whole registry, group expansion, include filtering,
// cumulative exclude filtering and deduplication. An empty result fails with
// NoMatchError.
func (r *Resolver) Resolve(ctx context.Context, sel servicedef.Selection) (Resolution, error) {
	defs, err := r.Registry.Load(ctx)
	if err != nil {
		return Resolution{}, err
	}
	res := &resolution{r: r, defs: defs, cache: make(map[string][]ResolvedFile)}

	groups := res.selectGroups(sel)

	var working []ResolvedFile
	if len(sel.Direct) > 0 {
		pool, err := res.pool(ctx)
		if err != nil {
			return Resolution{}, err
		}
		working = append(working, matchAny(pool, sel.Direct)...)
	}

	for _, name := range groups {
		files, err := res.expand(ctx, name)
		if err != nil {
			return Resolution{}, err
		}
		if len(files) == 0 {
			res.warn(CodeEmptyGroup, name, fmt.Sprintf("service %q matched no file", name))
		}
		working = append(working, files...)
	}

	if len(sel.Include) > 0 {
		working = res.include(working, sel.Include)
	}
	for _, re := range sel.Exclude {
		working = slices.DeleteFunc(working, func(f ResolvedFile) bool {
			return re.MatchString(string(f))
		})
	}

	files := dedupe(working)
	if len(files) == 0 {
		return Resolution{Diagnostics: res.diags}, newNoMatchError(sel)
	}
	return Resolution{Files: files, Diagnostics: res.diags}, nil
}

// selectGroups returns the registry names to expand, deduplicated. The
// AllServices sentinel selects every name, sorted. Unknown names are
// reported and skipped, also when AllServices is among them.
func (res *resolution) selectGroups(sel servicedef.Selection) []string {
	var out []string
	for _, name := range sel.Groups {
		if name == servicedef.AllServices || slices.Contains(out, name) {
			continue
		}
		if _, ok := res.defs[name]; !ok {
			res.warn(CodeUnknownGroup, name, fmt.Sprintf("service %q is not defined", name))
			continue
		}
		out = append(out, name)
	}
	if sel.SelectsAll() {
		return sortedNames(res.defs)
	}
	return out
}

// pool resolves every definition in the registry into one deduplicated list.
func (res *resolution) pool(ctx context.Context) ([]ResolvedFile, error) {
	var all []ResolvedFile
	for _, name := range sortedNames(res.defs) {
		files, err := res.expand(ctx, name)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return dedupe(all), nil
}

// expand globs one definition, memoized for the duration of the call.
func (res *resolution) expand(ctx context.Context, name string) ([]ResolvedFile, error) {
	if files, ok := res.cache[name]; ok {
		return files, nil
	}
	def := res.defs[name]
	matches, err := res.r.Matcher.Match(ctx, Expand(def), def.Depth)
	if err != nil {
		return nil, fmt.Errorf("match service %q: %w", name, err)
	}
	files := make([]ResolvedFile, len(matches))
	for i, m := range matches {
		files[i] = ResolvedFile(m)
	}
	res.cache[name] = files
	return files, nil
}

// include replaces working with the union of the matches of every pattern,
// in pattern order.
func (res *resolution) include(working []ResolvedFile, patterns []*regexp.Regexp) []ResolvedFile {
	var out []ResolvedFile
	for _, re := range patterns {
		matched := matchAny(working, []*regexp.Regexp{re})
		if len(matched) == 0 {
			res.note(CodeIncludeUnmatched, re.String(), fmt.Sprintf("include pattern %q matched nothing", re))
		}
		out = append(out, matched...)
	}
	return out
}

func (res *resolution) warn(code DiagnosticCode, subject, msg string) {
	res.diags = append(res.diags, Diagnostic{Code: code, Message: msg, Subject: subject})
	if res.r.Reporter != nil {
		report.Warn(res.r.Reporter, "%s", msg)
	}
}

// note records a diagnostic that is only shown at debug level.
func (res *resolution) note(code DiagnosticCode, subject, msg string) {
	res.diags = append(res.diags, Diagnostic{Code: code, Message: msg, Subject: subject})
	if res.r.Reporter != nil {
		report.Debug(res.r.Reporter, "%s", msg)
	}
}

func matchAny(files []ResolvedFile, patterns []*regexp.Regexp) []ResolvedFile {
	var out []ResolvedFile
	for _, f := range files {
		for _, re := range patterns {
			if re.MatchString(string(f)) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func dedupe(files []ResolvedFile) []ResolvedFile {
	seen := make(map[ResolvedFile]struct{}, len(files))
	out := make([]ResolvedFile, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func sortedNames(defs map[string]servicedef.ServiceDefinition) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newNoMatchError(sel servicedef.Selection) *NoMatchError {
	return &NoMatchError{
		Groups:  slices.Clone(sel.Groups),
		Include: patternStrings(sel.Include),
		Exclude: patternStrings(sel.Exclude),
		Direct:  patternStrings(sel.Direct),
	}
}

func patternStrings(res []*regexp.Regexp) []string {
	out := make([]string, len(res))
	for i, re := range res {
		out[i] = re.String()
	}
	return out
}
