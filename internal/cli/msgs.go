package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "A rule-driven asset pipeline"
	MsgVersionShort = "Print version information"
	MsgVersionLong  = "Print detailed version information including commit hash and build date"
	MsgBuildShort   = "Build the source tree into the output directory"
	MsgWatchShort   = "Rebuild whenever source files change"
	MsgMatchShort   = "Show which rules apply to a path"
	MsgMatchLong    = "Match lists every configured rule and whether it applies to the given source path, and why not."
	MsgRulesShort   = "List the configured rules"
	MsgInitShort    = "Write a starter bundler.toml"
	MsgInitLong     = "Init writes a commented bundler.toml with starter rules for scripts, styles, images and compression."

	// Status messages
	MsgDryRunNotice    = "DRY RUN MODE - No files were written"
	MsgInitCreated     = "Created %s\n"
	MsgWatchStopped    = "Stopped watching"
	MsgWatchRebuilding = "Rebuilding after %d changes"

	// Version output
	MsgVersionFormat = "bundler version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Error messages
	MsgErrAbsPath      = "failed to resolve project directory: %w"
	MsgErrConfigExists = "%s already exists (use --force to overwrite)"
	MsgErrPluginCfg    = "plugins"
	MsgErrPluginOpts   = "invalid options for plugin %q"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Configuration file (default: bundler.toml, bundler.yaml or bundler.yml in the project directory)"
	MsgFlagDir      = "Project directory"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagTrace    = "Export OpenTelemetry spans to stderr"
	MsgFlagDryRun   = "Run every transform without writing files"
	MsgFlagOut      = "Output directory, overriding the configuration"
	MsgFlagWorkers  = "Concurrent transforms (0 uses one per CPU)"
	MsgFlagPartial  = "Write the outputs of successful files even when others fail"
	MsgFlagRequire  = "Fail on files no rule applies to instead of copying them"
	MsgFlagForce    = "Overwrite an existing configuration file"
	MsgFlagDebounce = "Quiet period before a rebuild, overriding the configuration"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/match-example.txt
	msgMatchExampleRaw string
	MsgMatchExample    = strings.TrimRight(msgMatchExampleRaw, "\n")
)
