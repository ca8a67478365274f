// Package utils provides small helpers shared by the CLI layer.
//
//   - GetUsername: identity recorded in audit entries
//   - ReadPipedKey: an exported key piped into keys import
//   - ReadPassword: hidden password prompts for wrapped keys
//   - FormatPaths, ShortID: display helpers
package utils
