// Parses flags and runs uberjni commands.
//
// The CLI accepts the following global flags:
//
//	-q, --quiet      Suppress informational output.
//	-v, --verbose    Enable verbose output.
//	-d, --debug      Enable debug output.
//	-f, --manifest   Manifest to load.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is replaced to reflect the final level and verbosity before
// the command runs.
package cli
