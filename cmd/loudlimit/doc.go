// Command loudlimit is the command-line front end for loudness normalization.
//
// "loudlimit file" and "loudlimit dir" run the analyze/decide/correct pipeline
// against ffmpeg's loudnorm filter, "loudlimit history" lists past runs from
// the SQLite ledger, and "loudlimit check" verifies ffmpeg and directory
// access. Configuration is loaded lazily from --config, the user config
// directory, or ./loudlimit.toml.
package main
