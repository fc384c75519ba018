package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a source file was loaded.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates a UTF-8 byte order mark was stripped on load.
	FileHadBOM
	// FileNormalizedCRLF indicates CRLF line endings were rewritten to LF.
	FileNormalizedCRLF
	// FileDecodedLatin1 indicates the content was not valid UTF-8 and was
	// decoded as ISO 8859-1 instead.
	FileDecodedLatin1
)

// File captures metadata and normalized content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Hash    [32]byte
	Flags   FileFlags
}

// Lines splits the normalized content into physical lines without
// terminators. A trailing newline does not produce an empty final line.
func (f *File) Lines() []string {
	return SplitLines(f.Content)
}

// SplitLines splits normalized (LF-only) content into physical lines
// without terminators.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	if content[len(content)-1] == '\n' {
		content = content[:len(content)-1]
	}
	lines := make([]string, 0, 64)
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, string(content[start:i]))
			start = i + 1
		}
	}
	lines = append(lines, string(content[start:]))
	return lines
}
