package badger

import (
	"encoding/binary"

	"github.com/poiesic/faqdex/core"
)

// Key prefixes for different data types. Record and section keys carry a
// generation number so a rebuild can write a complete new index alongside the
// current one before the manifest flips over.
const (
	manifestKey   = "faqman"
	recordPrefix  = "faqrec"
	sectionPrefix = "faqsec"
)

// makeRecordKey generates a key for a record.
// Format: prefix:generation:id (generation and id in BigEndian so
// lexicographic iteration yields ascending ID order).
func makeRecordKey(generation uint64, id core.ID) []byte {
	buf := makeRecordPrefix(generation)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makeRecordPrefix generates the iteration prefix for one generation's records.
func makeRecordPrefix(generation uint64) []byte {
	buf := make([]byte, 0, len(recordPrefix)+1+8+1+8)
	buf = append(buf, recordPrefix...)
	buf = append(buf, ':')
	buf = binary.BigEndian.AppendUint64(buf, generation)
	return append(buf, ':')
}

// makeSectionKey generates a composite key for the section index.
// Format: prefix:generation:section:id
func makeSectionKey(generation uint64, section string, id core.ID) []byte {
	buf := makeSectionValuePrefix(generation, section)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makeSectionValuePrefix generates the iteration prefix for one section's
// entries within a generation.
func makeSectionValuePrefix(generation uint64, section string) []byte {
	buf := makeSectionPrefix(generation)
	buf = append(buf, section...)
	return append(buf, ':')
}

// makeSectionPrefix generates the iteration prefix for all section-index
// entries within a generation.
func makeSectionPrefix(generation uint64) []byte {
	buf := make([]byte, 0, len(sectionPrefix)+1+8+1)
	buf = append(buf, sectionPrefix...)
	buf = append(buf, ':')
	buf = binary.BigEndian.AppendUint64(buf, generation)
	return append(buf, ':')
}

// sectionFromKey recovers the section value from a section-index key.
// The section sits between the generation prefix and the trailing ":id" part.
func sectionFromKey(key []byte, generation uint64) string {
	start := len(makeSectionPrefix(generation))
	end := len(key) - 8 - 1 // strip id and its ':' separator
	if end < start {
		return ""
	}
	return string(key[start:end])
}
