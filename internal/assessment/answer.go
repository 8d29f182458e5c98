package assessment

import (
	"math"
	"strconv"
	"strings"
)

// AnswerKind tags the shape carried by an Answer.
type AnswerKind string

const (
	KindText   AnswerKind = "text"   // short/long text and single choice
	KindMulti  AnswerKind = "multi"  // ordered set of option values
	KindNumber AnswerKind = "number" // numeric input, kept as typed
	KindFile   AnswerKind = "file"   // file descriptor; payload is never stored
)

// FileRef describes an uploaded file without its contents.
type FileRef struct {
	Name string `json:"fileName"`
	Size int64  `json:"fileSize"`
	Type string `json:"fileType"`
}

// Answer is a tagged union over the answer shapes. The zero value means
// "no answer".
type Answer struct {
	Kind  AnswerKind `json:"kind"`
	Text  string     `json:"text,omitempty"`
	Items []string   `json:"items,omitempty"`
	File  *FileRef   `json:"file,omitempty"`
}

// Text returns a free-text answer.
func Text(s string) Answer { return Answer{Kind: KindText, Text: s} }

// Choice returns a single-choice answer holding an option value.
func Choice(value string) Answer { return Answer{Kind: KindText, Text: value} }

// Number returns a numeric answer exactly as the respondent typed it.
func Number(raw string) Answer { return Answer{Kind: KindNumber, Text: raw} }

// Multi returns a multiple-choice answer. Duplicates are dropped and the
// first-seen order is kept.
func Multi(values ...string) Answer {
	items := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		items = append(items, v)
	}
	return Answer{Kind: KindMulti, Items: items}
}

// File returns a file-upload answer.
func File(ref FileRef) Answer { return Answer{Kind: KindFile, File: &ref} }

// IsEmpty reports whether the answer carries nothing a required check accepts.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case KindText, KindNumber:
		return a.Text == ""
	case KindMulti:
		return len(a.Items) == 0
	case KindFile:
		return a.File == nil
	default:
		return true
	}
}

// Scalar returns the answer as a single string when it has a scalar shape.
func (a Answer) Scalar() (string, bool) {
	switch a.Kind {
	case KindText, KindNumber:
		return a.Text, true
	default:
		return "", false
	}
}

// String renders the answer as text. Multi answers are joined with ","
// and files render as their name.
func (a Answer) String() string {
	switch a.Kind {
	case KindText, KindNumber:
		return a.Text
	case KindMulti:
		return strings.Join(a.Items, ",")
	case KindFile:
		if a.File == nil {
			return ""
		}
		return a.File.Name
	default:
		return ""
	}
}

// Float coerces the answer to a number. Anything that does not parse,
// including the empty string, yields NaN.
func (a Answer) Float() float64 {
	return ParseNumber(a.String())
}

// Has reports whether a multi answer contains value.
func (a Answer) Has(value string) bool {
	for _, it := range a.Items {
		if it == value {
			return true
		}
	}
	return false
}

// Toggle returns a copy of a multi answer with value added or removed.
func (a Answer) Toggle(value string) Answer {
	if a.Has(value) {
		items := make([]string, 0, len(a.Items))
		for _, it := range a.Items {
			if it != value {
				items = append(items, it)
			}
		}
		return Answer{Kind: KindMulti, Items: items}
	}
	return Multi(append(append([]string(nil), a.Items...), value)...)
}

// ParseNumber parses s after trimming surrounding whitespace. It returns
// NaN when s is empty or not a finite decimal number.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// Responses maps question IDs to answers. A missing key means unanswered.
type Responses map[string]Answer

// Clone returns a deep copy.
func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for k, v := range r {
		if v.Items != nil {
			v.Items = append([]string(nil), v.Items...)
		}
		if v.File != nil {
			f := *v.File
			v.File = &f
		}
		out[k] = v
	}
	return out
}
