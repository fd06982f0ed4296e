package language

import "bytes"

// binarySniffLen is how many leading bytes are inspected for NUL bytes.
const binarySniffLen = 512

// IsBinaryContent reports whether data looks binary, judged by a NUL byte in its first bytes.
func IsBinaryContent(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
