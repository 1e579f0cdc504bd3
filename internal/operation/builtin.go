// SPDX-License-Identifier: MPL-2.0

package operation

// Built-in flag names.
const (
	FlagRaw           FlagName = "raw"
	FlagBuild         FlagName = "build"
	FlagForceRecreate FlagName = "force-recreate"
	FlagRemoveOrphans FlagName = "remove-orphans"
	FlagNoDeps        FlagName = "no-deps"
	FlagVolumes       FlagName = "volumes"
	FlagNoCache       FlagName = "no-cache"
	FlagAll           FlagName = "all"
	FlagTimestamps    FlagName = "timestamps"
	FlagNoTTY         FlagName = "T"
	FlagTimeout       FlagName = "timeout"
	FlagTail          FlagName = "tail"
	FlagSince         FlagName = "since"
	FlagUser          FlagName = "user"
	FlagWorkdir       FlagName = "workdir"
	FlagEnv           FlagName = "e"
	FlagService       FlagName = "service"
	FlagCommand       FlagName = "command"
)

// builtinFlags is declared in rendering order within each placement bucket.
var builtinFlags = []FlagSpec{
	{Name: FlagRaw, Kind: KindString, Placement: PrefixValue, Description: "Extra arguments inserted right after the operation verb"},
	{Name: FlagBuild, Kind: KindBool, Placement: InlineSwitch, Description: "Build images before starting containers"},
	{Name: FlagForceRecreate, Kind: KindBool, Placement: InlineSwitch, Description: "Recreate containers even if their configuration is unchanged"},
	{Name: FlagRemoveOrphans, Kind: KindBool, Placement: InlineSwitch, Description: "Remove containers for services not defined in the compose file"},
	{Name: FlagNoDeps, Kind: KindBool, Placement: InlineSwitch, Description: "Do not start linked services"},
	{Name: FlagVolumes, Kind: KindBool, Placement: InlineSwitch, Description: "Remove named and anonymous volumes"},
	{Name: FlagNoCache, Kind: KindBool, Placement: InlineSwitch, Description: "Do not use cache when building images"},
	{Name: FlagAll, Kind: KindBool, Placement: InlineSwitch, Description: "Show stopped containers too"},
	{Name: FlagTimestamps, Kind: KindBool, Placement: InlineSwitch, Description: "Show timestamps"},
	{Name: FlagNoTTY, Kind: KindBool, Placement: InlineSwitch, Description: "Disable pseudo-TTY allocation"},
	{Name: FlagTimeout, Kind: KindString, Placement: InlineValued, Description: "Shutdown timeout in seconds"},
	{Name: FlagTail, Kind: KindString, Placement: InlineValued, Description: "Number of lines to show from the end of the logs"},
	{Name: FlagSince, Kind: KindString, Placement: InlineValued, Description: "Show logs since a timestamp or relative duration"},
	{Name: FlagUser, Kind: KindString, Placement: InlineValued, Description: "Run the command as this user"},
	{Name: FlagWorkdir, Kind: KindString, Placement: InlineValued, Description: "Working directory inside the container"},
	{Name: FlagEnv, Kind: KindString, Placement: InlineValued, Description: "Set an environment variable (KEY=VALUE)"},
	{Name: FlagService, Kind: KindString, Placement: SuffixValue, Description: "Compose service(s) to target inside each project"},
	{Name: FlagCommand, Kind: KindString, Placement: SuffixValue, Description: "Command to run in the container"},
}

var builtinOperations = []Spec{
	{
		Key:         "up",
		Command:     "{{ .Compose }} -f {{ .File }} up -d",
		Description: "Create and start containers in the background",
		Flags:       []FlagName{FlagRaw, FlagBuild, FlagForceRecreate, FlagRemoveOrphans, FlagNoDeps, FlagTimeout, FlagService},
		Output:      Live,
	},
	{
		Key:         "down",
		Command:     "{{ .Compose }} -f {{ .File }} down",
		Description: "Stop and remove containers and networks",
		Flags:       []FlagName{FlagRaw, FlagRemoveOrphans, FlagVolumes, FlagTimeout},
		Output:      Live,
	},
	{
		Key:         "stop",
		Command:     "{{ .Compose }} -f {{ .File }} stop",
		Description: "Stop running containers without removing them",
		Flags:       []FlagName{FlagRaw, FlagTimeout, FlagService},
		Output:      Live,
	},
	{
		Key:         "restart",
		Command:     "{{ .Compose }} -f {{ .File }} restart",
		Description: "Restart containers",
		Flags:       []FlagName{FlagRaw, FlagNoDeps, FlagTimeout, FlagService},
		Output:      Live,
	},
	{
		Key:         "pull",
		Command:     "{{ .Compose }} -f {{ .File }} pull",
		Description: "Pull service images",
		Flags:       []FlagName{FlagRaw, FlagService},
		Output:      Live,
	},
	{
		Key:         "build",
		Command:     "{{ .Compose }} -f {{ .File }} build",
		Description: "Build or rebuild service images",
		Flags:       []FlagName{FlagRaw, FlagNoCache, FlagService},
		Output:      Live,
	},
	{
		Key:         "ps",
		Command:     "{{ .Compose }} -f {{ .File }} ps",
		Description: "List containers",
		Flags:       []FlagName{FlagRaw, FlagAll, FlagService},
		Output:      Live,
		KeepOutput:  true,
	},
	{
		Key:         "logs",
		Command:     "{{ .Compose }} -f {{ .File }} logs -f",
		Description: "Follow container logs",
		Flags:       []FlagName{FlagRaw, FlagTimestamps, FlagTail, FlagSince, FlagService},
		Output:      Deferred,
		KeepOutput:  true,
	},
	{
		Key:          "exec",
		Command:      "{{ .Compose }} -f {{ .File }} exec",
		Description:  "Execute a command in a running container",
		Flags:        []FlagName{FlagRaw, FlagNoTTY, FlagUser, FlagWorkdir, FlagEnv, FlagService, FlagCommand},
		Required:     []FlagName{FlagService, FlagCommand},
		ServiceLimit: 1,
		Output:       Headless,
	},
}
