package source

import (
	"slices"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText normalizes raw file bytes into UTF-8 text with LF line endings.
// Decoding never fails: content that is not valid UTF-8 is reinterpreted as
// ISO 8859-1, which maps every byte to a code point.
func DecodeText(raw []byte) ([]byte, FileFlags) {
	flags := FileFlags(0)

	content, hadBOM := removeBOM(raw)
	if hadBOM {
		flags |= FileHadBOM
	}

	if !utf8.Valid(content) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
		if err == nil {
			content = decoded
			flags |= FileDecodedLatin1
		}
	}

	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
func normalizeCRLF(content []byte) ([]byte, bool) {
	// Fast path: no \r at all.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}
