package corpus

import "regexp"

// Tokenizer is an interface that defines the contract for splitting a text
// record into tokens. This allows loading to be independent of the specific
// tokenization strategy.
type Tokenizer interface {
	// Tokens splits text into tokens. It never returns empty tokens.
	Tokens(text string) []string
}

// DefaultTokenizer is a default implementation of the Tokenizer interface.
// It uses a regular expression to find tokens; by default every maximal run
// of non-whitespace characters is one token, so punctuation stays attached to
// its word.
type DefaultTokenizer struct {
	tokenRegex *regexp.Regexp
}

// TokenizerOption Is a function that configures a DefaultTokenizer.
type TokenizerOption func(*DefaultTokenizer)

// WithTokenRegex sets the regex string used to find tokens in a record.
// Default: `\S+`
func WithTokenRegex(tokenRegex string) TokenizerOption {
	return func(t *DefaultTokenizer) {
		t.tokenRegex = regexp.MustCompile(tokenRegex)
	}
}

// NewDefaultTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more TokenizerOption functions.
func NewDefaultTokenizer(opts ...TokenizerOption) *DefaultTokenizer {
	t := &DefaultTokenizer{
		tokenRegex: regexp.MustCompile(`\S+`),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Tokens returns every non-empty match of the token regex in text.
func (t *DefaultTokenizer) Tokens(text string) []string {
	matches := t.tokenRegex.FindAllString(text, -1)
	tokens := matches[:0]
	for _, m := range matches {
		if m != "" {
			tokens = append(tokens, m)
		}
	}
	return tokens
}
