// Package chunk slices entry payloads into bounded value chunks and applies
// optional block compression.
package chunk

// Count returns the number of slices a payload of n bytes occupies with the
// given slice size. An empty payload occupies exactly one (empty) slice.
func Count(n, size int) int {
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Split cuts data into contiguous slices of at most size bytes.
// Slices alias data. An empty payload yields one empty slice.
func Split(data []byte, size int) [][]byte {
	if size <= 0 {
		panic("chunk: slice size must be positive")
	}
	n := Count(len(data), size)
	out := make([][]byte, 0, n)
	if len(data) == 0 {
		return append(out, []byte{})
	}
	for off := 0; off < len(data); off += size {
		end := min(off+size, len(data))
		out = append(out, data[off:end:end])
	}
	return out
}

// Join concatenates slices in order.
func Join(slices [][]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	out := make([]byte, 0, total)
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}
