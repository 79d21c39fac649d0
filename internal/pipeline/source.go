package pipeline

import (
	"errors"
	"os"
	"strings"
)

// ErrEmptySource is returned when a source yields no transcript text
var ErrEmptySource = errors.New("source is empty")

// SourceKind identifies where a transcript comes from
type SourceKind string

const (
	SourceText  SourceKind = "text"
	SourceFile  SourceKind = "file"
	SourceStdin SourceKind = "stdin"
	SourceURL   SourceKind = "url"
)

// Source is a resolved transcript location
type Source struct {
	Kind  SourceKind
	Value string // Literal text, path or URL
}

// String returns a label for reports
func (s Source) String() string {
	switch s.Kind {
	case SourceText:
		return "text"
	case SourceStdin:
		return "stdin"
	default:
		return s.Value
	}
}

// ResolveSource classifies an argument: "-" is stdin, an http(s) URL is
// fetched, an existing regular file is read and anything else is the
// transcript itself
func ResolveSource(arg string) Source {
	trimmed := strings.TrimSpace(arg)

	switch {
	case trimmed == "-":
		return Source{Kind: SourceStdin, Value: "-"}
	case strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://"):
		if !strings.ContainsAny(trimmed, " \t\n") {
			return Source{Kind: SourceURL, Value: trimmed}
		}
	case trimmed != "" && !strings.ContainsAny(trimmed, "\n"):
		if info, err := os.Stat(trimmed); err == nil && info.Mode().IsRegular() {
			return Source{Kind: SourceFile, Value: trimmed}
		}
	}

	return Source{Kind: SourceText, Value: arg}
}
