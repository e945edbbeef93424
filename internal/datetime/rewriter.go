// Package datetime rewrites zone-less datetime literals embedded in query
// text into UTC ISO-8601 form.
//
// Operators write filters against a store whose timestamps were recorded in
// UTC+8 wall-clock time with no zone marker. Downstream everything speaks
// UTC, so every literal matching a date-time shape is reinterpreted as
// UTC+8 and rewritten before the query is parsed. The rewrite is purely
// textual and total: literals that match the shape but name an impossible
// instant still produce an ISO-shaped result, with a warning value
// describing what could not be parsed.
package datetime

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// literalPattern matches a date-time literal: four-digit year, then month,
// day, hour, minute and second of one or two digits, date separated by "-"
// or "/", a single space before the time. An ISO "T" separator does not
// match, so already-rewritten text passes through untouched.
var literalPattern = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2} \d{1,2}:\d{1,2}:\d{1,2}`)

// parseLayout accepts the unpadded field widths the pattern allows.
const parseLayout = "2006-1-2 15:4:5"

// isoLayout is the rewritten form, always UTC.
const isoLayout = "2006-01-02T15:04:05Z"

// sourceZone is the fixed offset the store's literals are recorded in.
// A fixed zone, not a named one: historical literals do not shift with
// daylight-saving rules.
var sourceZone = time.FixedZone("UTC+8", 8*60*60)

// Warning records one literal that matched the date-time shape but named
// no real instant. The rewrite still produced a fallback result; the
// warning exists so callers can surface the degradation.
type Warning struct {
	Literal string
	Err     error
}

func (w Warning) String() string {
	return fmt.Sprintf("unparseable datetime %q: %v", w.Literal, w.Err)
}

// Rewriter rewrites date-time literals from a source wall-clock zone into
// UTC. The zero value is not usable; construct with NewRewriter.
type Rewriter struct {
	source *time.Location
}

// NewRewriter returns a Rewriter reading literals as UTC+8 wall-clock
// time.
func NewRewriter() *Rewriter {
	return &Rewriter{source: sourceZone}
}

// NewRewriterIn returns a Rewriter reading literals in the given zone.
func NewRewriterIn(loc *time.Location) *Rewriter {
	if loc == nil {
		loc = sourceZone
	}
	return &Rewriter{source: loc}
}

// Rewrite replaces every date-time literal in text with its UTC ISO-8601
// equivalent and returns the rewritten text. Text without any literal
// comes back unchanged. Literals that fail to parse are normalised by
// shape instead, one Warning per failure, in match order.
func (r *Rewriter) Rewrite(text string) (string, []Warning) {
	var warnings []Warning
	out := literalPattern.ReplaceAllStringFunc(text, func(literal string) string {
		iso, err := r.rewriteLiteral(literal)
		if err != nil {
			warnings = append(warnings, Warning{Literal: literal, Err: err})
		}
		return iso
	})
	return out, warnings
}

// rewriteLiteral converts one matched literal. On parse failure it falls
// back to reshaping the text: separators normalised to "-", the space
// replaced by "T", a "Z" appended. The fallback keeps the original digit
// widths.
func (r *Rewriter) rewriteLiteral(literal string) (string, error) {
	normalised := strings.ReplaceAll(literal, "/", "-")
	t, err := time.ParseInLocation(parseLayout, normalised, r.source)
	if err != nil {
		return strings.Replace(normalised, " ", "T", 1) + "Z", err
	}
	return t.UTC().Format(isoLayout), nil
}
