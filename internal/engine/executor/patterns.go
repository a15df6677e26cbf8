package executor

import (
	"regexp"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// Patterns recognise credential prompts and their outcome in process output.
type Patterns struct {
	Prompts    []*regexp.Regexp
	Rejections []*regexp.Regexp
	Lockouts   []*regexp.Regexp
}

// CompilePatterns compiles the configured expressions.
func CompilePatterns(prompts, rejections, lockouts []string) (Patterns, error) {
	var p Patterns
	var err error
	if p.Prompts, err = compileAll("prompts", prompts); err != nil {
		return Patterns{}, err
	}
	if p.Rejections, err = compileAll("rejections", rejections); err != nil {
		return Patterns{}, err
	}
	if p.Lockouts, err = compileAll("lockouts", lockouts); err != nil {
		return Patterns{}, err
	}
	return p, nil
}

func compileAll(field string, exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			wrapped := zerr.Wrap(err, domain.ErrConfigInvalid.Error())
			return nil, zerr.With(zerr.With(wrapped, "field", "credential."+field), "pattern", expr)
		}
		out = append(out, re)
	}
	return out, nil
}

// IsPrompt reports whether line asks for a secret.
func (p Patterns) IsPrompt(line string) bool {
	return matchAny(p.Prompts, line)
}

// IsRejection reports whether line says the last secret was wrong.
func (p Patterns) IsRejection(line string) bool {
	return matchAny(p.Rejections, line)
}

// IsLockout reports whether line says the account is locked.
func (p Patterns) IsLockout(line string) bool {
	return matchAny(p.Lockouts, line)
}

// Purpose guesses what the prompt is asking for.
func Purpose(prompt string) domain.CredentialPurpose {
	if strings.Contains(strings.ToLower(prompt), "passphrase") {
		return domain.CredentialPassphrase
	}
	return domain.CredentialElevation
}

func matchAny(res []*regexp.Regexp, line string) bool {
	for _, re := range res {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
