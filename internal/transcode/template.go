package transcode

import (
	"fmt"
	"strings"
)

// Command template tokens. Templates are collaborator configuration; the
// adapter substitutes tokens and never interprets the rest.
const (
	TokenEncoder = "{encoder}"
	TokenSource  = "{source}"
	TokenTarget  = "{target}"
	TokenVolNorm = "{volnorm}"
	TokenFrames  = "{frames}"
)

// Default command templates for the stock ffmpeg tooling. Everything
// outside the tokens passes to the encoder verbatim.
const (
	DefaultAudioTemplate  = `{encoder} -y -i "{source}" {volnorm} "{target}"`
	DefaultVideoTemplate  = `{encoder} -y -i "{source}" -c:v libx264 -preset fast -crf 23 -c:a aac "{target}"`
	DefaultSampleTemplate = `{encoder} -y -i "{source}" -vf thumbnail -frames:v {frames} "{target}"`
)

// expandTemplate substitutes tokens and splits the result into argv.
// Returns an error when the template produces no command.
func expandTemplate(template string, subs map[string]string) ([]string, error) {
	expanded := template
	for token, value := range subs {
		expanded = strings.ReplaceAll(expanded, token, value)
	}

	argv := splitCommand(expanded)
	if len(argv) == 0 {
		return nil, fmt.Errorf("command template %q expanded to an empty command", template)
	}
	return argv, nil
}

// splitCommand splits a command line into arguments, honoring single and
// double quotes. Substituted paths may contain spaces, so templates quote
// their tokens.
func splitCommand(s string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, current.String())
	}
	return args
}
