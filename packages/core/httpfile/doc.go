// Package httpfile parses .http request files into request descriptors.
//
// A file is a sequence of request blocks:
//
//	###
//	# optional comment
//	POST https://example.com/comments HTTP/1.1
//	content-type: application/json
//
//	{"name": "sample"}
//
// Blocks are separated by a line starting with "###". Each block holds
// comment lines, a request line (METHOD URL [VERSION]), header lines, a
// blank line and body lines. The last block may end at end of file.
//
// The parser is line oriented and forgiving in a few deliberate ways:
//   - Comment lines and body lines are concatenated without separators
//   - Header values are cut at a second ": " in the line
//   - A "###" line inside the header section is parsed as a header
//   - A failed request does not stop the sequence; the next call resumes
//     from wherever the reader stopped
package httpfile
