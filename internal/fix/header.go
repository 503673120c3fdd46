package fix

import (
	"bytes"

	"spbg/internal/diag"
)

const (
	privateMarker = "private:"
	publicMarker  = "    public:"
)

// AccessMarker builds the fix that rewrites the first line ending in
// "private:" to a public access specifier. The line terminator, LF or CRLF,
// is kept. A header without the marker is malformed.
func AccessMarker(content []byte) (Fix, error) {
	start := 0
	for start <= len(content) {
		end := len(content)
		if i := bytes.IndexByte(content[start:], '\n'); i >= 0 {
			end = start + i
		}
		line := content[start:end]
		body := bytes.TrimSuffix(line, []byte("\r"))
		if bytes.HasSuffix(body, []byte(privateMarker)) {
			return Fix{
				ID:    "header-access",
				Title: "make the private section public",
				Edits: []TextEdit{{
					Start:   start,
					End:     start + len(body),
					OldText: string(body),
					NewText: publicMarker,
				}},
			}, nil
		}
		if end == len(content) {
			break
		}
		start = end + 1
	}
	return Fix{}, diag.Errorf(diag.PatchMissingMarker, "no line ends with %q", privateMarker)
}

// PatchHeader opens up the private section of the header at path in place.
func PatchHeader(path string) (*AppliedFix, error) {
	return ApplyFile(path, AccessMarker)
}
