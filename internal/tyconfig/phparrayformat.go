package tyconfig

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/cpsit/tycore/internal/tyconfig/phparray"
	"github.com/cpsit/tycore/internal/tyerrors"
)

// PHPArrayFormat parses the PHP array-literal configuration dialect
// ("return [...];" documents) via the restricted phparray tokenizer and
// evaluator.
type PHPArrayFormat struct {
	Limits phparray.Limits
}

// NewPHPArrayFormat constructs the format handler with phparray's
// default size/depth limits.
func NewPHPArrayFormat() Format {
	return PHPArrayFormat{Limits: phparray.DefaultLimits}
}

func (PHPArrayFormat) Identifier() string { return "php-array" }

var phpExt = regexp.MustCompile(`(?i)\.php$`)

func (PHPArrayFormat) Supports(path string, content []byte) bool {
	if phpExt.MatchString(path) {
		return true
	}
	return returnArrayPattern.Match(content)
}

var returnArrayPattern = regexp.MustCompile(`(?s)^\s*<\?php.*return\s*[\[(]`)

func (f PHPArrayFormat) Parse(_ string, content []byte) (map[string]any, error) {
	body := stripPHPTags(content)

	limits := f.Limits
	if limits.MaxBytes == 0 && limits.MaxDepth == 0 {
		limits = phparray.DefaultLimits
	}

	data, err := phparray.ParseAndEval(body, limits)
	if err != nil {
		var secErr *phparray.SecurityLimitError
		if errors.As(err, &secErr) {
			return nil, tyerrors.New(tyerrors.CodeSecurityLimit, tyerrors.SeverityError, false, "%s", secErr.Error())
		}
		return nil, fmt.Errorf("phparray: %w", err)
	}
	return data, nil
}

var phpOpenTag = regexp.MustCompile(`(?s)^\s*<\?php`)
var returnStatement = regexp.MustCompile(`(?s)return\s*([\[(].*)`)

// stripPHPTags extracts the return expression body from a full PHP source
// file, discarding everything before the first `return` (the `<?php` tag
// and any declare()/namespace statements) that this restricted grammar
// doesn't need to understand. Text after the return expression is kept,
// so the parser rejects anything there besides a trailing semicolon. If
// there is no return statement, only the leading `<?php` tag is removed.
func stripPHPTags(content []byte) []byte {
	if m := returnStatement.FindSubmatch(content); m != nil {
		return m[1]
	}
	return phpOpenTag.ReplaceAll(content, nil)
}

