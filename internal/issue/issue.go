// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	NoMatchingServicesId Id = iota + 1
	UnknownOperationId
	InvalidFlagsId
	TooManyServicesId
	ComposeNotFoundId
	ConfigLoadFailedId
	ServicesFileNotFoundId
	ServicesFileInvalidId
	InvalidPatternId
	ChildProcessFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Renderer interface {
		Render(in string, stylePath string) (string, error)
	}

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue page with glamour. stylePath is a glamour style
// name such as "dark", "light" or "notty".
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	noMatchingServicesIssue = &Issue{
		id: NoMatchingServicesId,
		mdMsg: `
# No compose files matched!

The selection resolved to an empty set of compose files, so nothing was run.

## Things you can try:
- List the configured services and their paths:
~~~
$ servicecmd services
~~~

- Check that the paths are relative to the directory you run servicecmd from
- Loosen your ` + "`--regex`" + ` / ` + "`--ignore`" + ` patterns
- Raise the ` + "`depth`" + ` of the service if its compose files live deeper in the tree`,
	}

	unknownOperationIssue = &Issue{
		id: UnknownOperationId,
		mdMsg: `
# Unknown operation!

servicecmd only runs the compose operations it knows about.

## Things you can try:
- See the available operations:
~~~
$ servicecmd --help
~~~`,
	}

	invalidFlagsIssue = &Issue{
		id: InvalidFlagsId,
		mdMsg: `
# Invalid flags for this operation!

Some flags are not accepted by this operation, or a required flag is missing.

## Things you can try:
- See which flags the operation accepts:
~~~
$ servicecmd <operation> --help
~~~

- Pass extra compose arguments verbatim with ` + "`--raw`",
	}

	tooManyServicesIssue = &Issue{
		id: TooManyServicesId,
		mdMsg: `
# Too many compose files selected!

This operation can only run against a limited number of compose files at once
(` + "`exec`" + ` needs exactly one, because it attaches to your terminal).

## Things you can try:
- Select a single service by name
- Narrow the selection with ` + "`--regex`" + ` or ` + "`--ignore`",
	}

	composeNotFoundIssue = &Issue{
		id: ComposeNotFoundId,
		mdMsg: `
# No compose front-end found!

servicecmd runs ` + "`docker compose`" + `, ` + "`docker-compose`" + ` or ` + "`podman compose`" + `,
and none of them is available.

## Things you can try:
- Install Docker with the compose plugin, or Podman with podman-compose
- Point servicecmd at a specific binary in your config:
~~~cue
compose: {
  engine: "docker-compose"
  binary: "/usr/local/bin/docker-compose"
}
~~~`,
		extLinks: []HttpLink{"https://docs.docker.com/compose/install/"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show the effective configuration:
~~~
$ servicecmd config show
~~~

- Check the CUE syntax of the file and the allowed values, for example:
~~~cue
compose: engine: "auto"
concurrency: 4
ui: color_scheme: "dark"
~~~`,
	}

	servicesFileNotFoundIssue = &Issue{
		id: ServicesFileNotFoundId,
		mdMsg: `
# No services file found!

servicecmd needs a services file that names the service groups to work on.

## Things you can try:
- Create ` + "`services.cue`" + ` in the config directory:
~~~cue
services: [
  {name: "web", path: ["./apps/web"]},
  {name: "infra", path: ["./infra"], file: ["compose.yml"], depth: "unbounded"},
]
~~~

- Or set ` + "`services_file`" + ` in your config to an existing CUE, YAML or TOML file`,
	}

	servicesFileInvalidIssue = &Issue{
		id: ServicesFileInvalidId,
		mdMsg: `
# Invalid services file!

The services file does not match the expected structure.

## Common issues:
- A service without any ` + "`path`" + `
- Two services with the same name
- A service named ` + "`all`" + `, which is reserved
- A negative ` + "`depth`",
	}

	invalidPatternIssue = &Issue{
		id: InvalidPatternId,
		mdMsg: `
# Invalid pattern!

The ` + "`--regex`" + `, ` + "`--ignore`" + ` and ` + "`--pattern`" + ` flags take regular expressions (RE2 syntax).

## Things you can try:
- Escape special characters such as ` + "`.`" + `, ` + "`(`" + ` and ` + "`[`" + `
- Quote the pattern so your shell does not expand it`,
		extLinks: []HttpLink{"https://github.com/google/re2/wiki/Syntax"},
	}

	childProcessFailedIssue = &Issue{
		id: ChildProcessFailedId,
		mdMsg: `
# Some compose commands failed!

Every selected compose file was attempted, but at least one command exited
with a non-zero status.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the full output of every command`,
	}

	issues = map[Id]*Issue{
		noMatchingServicesIssue.Id():   noMatchingServicesIssue,
		unknownOperationIssue.Id():     unknownOperationIssue,
		invalidFlagsIssue.Id():         invalidFlagsIssue,
		tooManyServicesIssue.Id():      tooManyServicesIssue,
		composeNotFoundIssue.Id():      composeNotFoundIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		servicesFileNotFoundIssue.Id(): servicesFileNotFoundIssue,
		servicesFileInvalidIssue.Id():  servicesFileInvalidIssue,
		invalidPatternIssue.Id():       invalidPatternIssue,
		childProcessFailedIssue.Id():   childProcessFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
