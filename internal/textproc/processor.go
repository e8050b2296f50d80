// Package textproc cleans extracted region text: OCR confusion repair on
// low-confidence tokens, whitespace and punctuation normalisation and the
// per-region cleanup rules declared by templates.
package textproc

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"bolx/internal/domain"
)

// Options controls a Processor.
type Options struct {
	// LowConfidence is the confidence below which tokens get confusion repair.
	LowConfidence float64
	// CollapseSpacedLetters joins runs like "H E L L O" into "HELLO".
	CollapseSpacedLetters bool
	// TokenReplacements maps whole tokens to their corrected form, e.g. "rn" to "m".
	TokenReplacements map[string]string
}

// DefaultOptions returns the stock post-processing settings.
func DefaultOptions() Options {
	return Options{
		LowConfidence:         0.6,
		CollapseSpacedLetters: true,
		TokenReplacements:     DefaultTokenReplacements(),
	}
}

// DefaultTokenReplacements returns the built-in whole-token confusion table.
func DefaultTokenReplacements() map[string]string {
	return map[string]string{
		"rn": "m",
		"vv": "w",
		"VV": "W",
	}
}

var (
	upperLetterFor = map[rune]rune{'0': 'O', '1': 'I', '2': 'Z', '5': 'S', '8': 'B'}
	lowerLetterFor = map[rune]rune{'0': 'o', '1': 'l', '5': 's'}
	digitFor       = map[rune]rune{
		'O': '0', 'o': '0', 'D': '0', 'Q': '0',
		'l': '1', 'I': '1', 'i': '1', '|': '1',
		'Z': '2', 'z': '2',
		'S': '5', 's': '5',
		'B': '8',
	}
)

var (
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([,;:.!?)])`)
	missingSpace     = regexp.MustCompile(`([,;:])(\pL)`)
	horizontalSpace  = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
)

// Processor applies post-processing. It is safe for concurrent use; compiled
// cleanup patterns are cached per pattern string.
type Processor struct {
	opts  Options
	cache sync.Map
}

// NewProcessor creates a Processor.
func NewProcessor(opts Options) *Processor {
	if opts.TokenReplacements == nil {
		opts.TokenReplacements = DefaultTokenReplacements()
	}
	return &Processor{opts: opts}
}

// CorrectTokens returns a copy of tokens with confusion repair applied to every
// token whose confidence is below the low-confidence threshold.
func (p *Processor) CorrectTokens(tokens []domain.Token) []domain.Token {
	out := make([]domain.Token, len(tokens))
	for i, t := range tokens {
		if t.Confidence < p.opts.LowConfidence {
			t.Text = p.CorrectToken(t.Text)
		}
		out[i] = t
	}
	return out
}

// CorrectToken repairs common OCR confusions in a single token. Whole-token
// replacements apply first, as-is. Otherwise tokens that are mostly letters get
// digits swapped for look-alike letters; mostly numeric tokens get the reverse.
// Pure and balanced tokens are left alone.
func (p *Processor) CorrectToken(text string) string {
	if repl, ok := p.opts.TokenReplacements[text]; ok {
		return repl
	}

	var letters, digits, lower, upper int
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
			if unicode.IsLower(r) {
				lower++
			} else if unicode.IsUpper(r) {
				upper++
			}
		}
	}

	switch {
	case letters > digits && digits > 0:
		table := upperLetterFor
		if lower > upper {
			table = lowerLetterFor
		}
		return mapRunes(text, func(i int, r rune) rune {
			if l, ok := table[r]; ok {
				return l
			}
			return r
		})
	case letters > digits && lower > upper:
		// Capital I inside a lowercase word is almost always a misread l.
		return mapRunes(text, func(i int, r rune) rune {
			if r == 'I' && i > 0 {
				return 'l'
			}
			return r
		})
	case digits > letters && letters > 0:
		return mapRunes(text, func(_ int, r rune) rune {
			if d, ok := digitFor[r]; ok {
				return d
			}
			return r
		})
	}
	return text
}

func mapRunes(s string, fn func(i int, r rune) rune) string {
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for _, r := range s {
		b.WriteRune(fn(i, r))
		i++
	}
	return b.String()
}

// Normalize canonicalises text: NFC, collapsed horizontal whitespace, trimmed
// lines, at most one blank line in a row, punctuation spacing and optionally
// spaced-letter collapse. Normalize(Normalize(s)) == Normalize(s).
func (p *Processor) Normalize(text string) string {
	text = norm.NFC.String(text)
	text = collapseWhitespace(text)
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = missingSpace.ReplaceAllString(text, "$1 $2")
	if p.opts.CollapseSpacedLetters {
		text = collapseSpacedLetters(text)
	}
	return collapseWhitespace(text)
}

// Cleanup applies the region's regex rules in order and re-collapses
// whitespace afterwards.
func (p *Processor) Cleanup(text string, rules []domain.CleanupRule) (string, error) {
	if len(rules) == 0 {
		return text, nil
	}
	for _, rule := range rules {
		re, err := p.compile(rule.Pattern)
		if err != nil {
			return text, err
		}
		text = re.ReplaceAllString(text, rule.Replace)
	}
	return collapseWhitespace(text), nil
}

// Process runs Normalize followed by Cleanup.
func (p *Processor) Process(text string, rules []domain.CleanupRule) (string, error) {
	return p.Cleanup(p.Normalize(text), rules)
}

func (p *Processor) compile(pattern string) (*regexp.Regexp, error) {
	if v, ok := p.cache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling cleanup pattern %q: %w", pattern, err)
	}
	p.cache.Store(pattern, re)
	return re, nil
}

func collapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line == "" {
			if len(out) == 0 || blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpacedLetters(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		words := strings.Split(line, " ")
		var out []string
		for j := 0; j < len(words); {
			k := j
			for k < len(words) && isSingleLetter(words[k]) {
				k++
			}
			if k-j >= 3 {
				out = append(out, strings.Join(words[j:k], ""))
				j = k
				continue
			}
			out = append(out, words[j])
			j++
		}
		lines[i] = strings.Join(out, " ")
	}
	return strings.Join(lines, "\n")
}

func isSingleLetter(w string) bool {
	if utf8.RuneCountInString(w) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsLetter(r)
}
