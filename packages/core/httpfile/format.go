package httpfile

import (
	"io"
	"strings"
)

// Format renders requests as a .http document.
//
// Parsing the result yields the same requests, except where the grammar
// cannot carry the data: body lines come back trimmed and joined, body lines
// starting with "###" end the request, and headers with an empty value fail
// to parse.
func Format(requests []*Request) string {
	var sb strings.Builder
	for i, r := range requests {
		if i > 0 {
			sb.WriteString("###\n")
		}
		writeRequest(&sb, r)
	}
	return sb.String()
}

// Write writes Format(requests) to w.
func Write(w io.Writer, requests []*Request) error {
	_, err := io.WriteString(w, Format(requests))
	return err
}

func writeRequest(sb *strings.Builder, r *Request) {
	if r.Comment != "" {
		comment := r.Comment
		if !strings.HasPrefix(comment, "#") {
			comment = "# " + comment
		}
		sb.WriteString(strings.ReplaceAll(comment, "\n", " "))
		sb.WriteString("\n")
	}

	sb.WriteString(r.Method)
	sb.WriteString(" ")
	sb.WriteString(r.URL)
	if r.Version != "" && r.Version != DefaultVersion {
		sb.WriteString(" ")
		sb.WriteString(r.Version)
	}
	sb.WriteString("\n")

	for _, h := range r.Headers {
		sb.WriteString(h.Name)
		sb.WriteString(": ")
		sb.WriteString(h.Value)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if r.Body != "" {
		sb.WriteString(r.Body)
		sb.WriteString("\n\n")
	}
}
