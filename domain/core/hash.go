package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash is a cryptographic content fingerprint.
type Hash string

func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

func (h Hash) String() string { return string(h) }

func (h Hash) IsEmpty() bool { return h == "" }

func (h Hash) Equals(other Hash) bool { return h == other }

// PipelineHash fingerprints an ordered list of preprocessing steps so a
// batch run's manifest can assert it used a specific, reproducible chain.
type PipelineHash Hash

func (h PipelineHash) String() string { return Hash(h).String() }

// ComputePipelineHash hashes step tags and their sorted parameter keys, so
// two logically identical plans produce the same fingerprint regardless
// of how their parameter maps were built.
func ComputePipelineHash(stepTags []string, stepParams []map[string]interface{}) PipelineHash {
	var data strings.Builder
	for i, tag := range stepTags {
		data.WriteString(tag)
		data.WriteByte('|')
		if i < len(stepParams) {
			keys := make([]string, 0, len(stepParams[i]))
			for k := range stepParams[i] {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				data.WriteString(k)
				data.WriteString(fmt.Sprintf("=%v;", stepParams[i][k]))
			}
		}
		data.WriteByte('\n')
	}
	return PipelineHash(NewHash([]byte(data.String())))
}
