package testutil

// ByteStream reads bytes sequentially from a byte slice.
//
// Used by fuzz tests to deterministically derive values from fuzz input.
// When the stream is exhausted, all reads return zero values. This ensures
// determinism: the same input always produces the same sequence of values.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream creates a stream over the given bytes.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 if exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextInt returns a non-negative int below maxVal derived from the next byte.
func (s *ByteStream) NextInt(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}

	return int(s.NextByte()) % maxVal
}

// NextInt64 returns a value in [0, maxVal) built from two bytes, so lengths
// beyond 255 are reachable.
func (s *ByteStream) NextInt64(maxVal int64) int64 {
	if maxVal <= 0 {
		return 0
	}

	v := int64(s.NextByte())<<8 | int64(s.NextByte())

	return v % maxVal
}

// NextBool returns a boolean derived from the next byte.
func (s *ByteStream) NextBool() bool {
	return s.NextByte()&1 == 1
}

// NextName returns a name drawn from a tiny alphabet so generated
// operations collide on existing names often.
func (s *ByteStream) NextName() string {
	const alphabet = "abc"

	length := 1 + s.NextInt(2)
	b := make([]byte, length)

	for i := range b {
		b[i] = alphabet[s.NextInt(len(alphabet))]
	}

	return string(b)
}

// NextData returns up to maxLen bytes whose content depends on the stream
// position, so distinct writes produce distinct files.
func (s *ByteStream) NextData(maxLen int64) []byte {
	n := s.NextInt64(maxLen + 1)
	seed := s.NextByte()

	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i*7)
	}

	return out
}
