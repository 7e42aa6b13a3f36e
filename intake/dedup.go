package intake

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

/* Deduplication hash over the identifying fields of an event
 * Length-prefixed encoding removes concatenation ambiguity: ("ab","c") and
 * ("a","bc") must never collide. The nil offset is encoded distinctly from
 * offset zero for the same reason.
 */

// ComputeHash returns the stable dedup fingerprint for an event
func ComputeHash(workflowID, agentID string, offset *int64, payload []byte) string {
	h := sha256.New()

	writeField := func(b []byte) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(b)))
		h.Write(length[:])
		h.Write(b)
	}

	writeField([]byte(workflowID))
	writeField([]byte(agentID))

	if offset == nil {
		h.Write([]byte{0})
	} else {
		var buf [9]byte
		buf[0] = 1
		binary.BigEndian.PutUint64(buf[1:], uint64(*offset))
		h.Write(buf[:])
	}

	writeField(payload)

	return hex.EncodeToString(h.Sum(nil))
}
