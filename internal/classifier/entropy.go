package classifier

import (
	"math"
	"unicode/utf8"
)

// ShannonEntropy returns the Shannon entropy of s in bits per character.
// Characters are runes; the empty string has zero entropy.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	// Counts are summed in first-occurrence order so the result does not
	// depend on map iteration order.
	index := make(map[rune]int)
	var counts []int
	n := 0
	for _, r := range s {
		i, ok := index[r]
		if !ok {
			i = len(counts)
			index[r] = i
			counts = append(counts, 0)
		}
		counts[i]++
		n++
	}
	length := float64(n)
	var h float64
	for _, c := range counts {
		p := float64(c) / length
		h -= p * math.Log2(p)
	}
	return h
}

// maxEntropy is the highest entropy a string of n characters can reach.
func maxEntropy(s string) float64 {
	n := utf8.RuneCountInString(s)
	if n <= 1 {
		return 0
	}
	return math.Log2(float64(n))
}
