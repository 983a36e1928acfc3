package embedding

import "math"

// Normalize scales vec to unit length in place. Zero vectors are returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) * inv)
	}
	return vec
}

// MeanPool averages token vectors of a [seqLen, hidden] buffer, counting only
// positions where mask is non-zero.
func MeanPool(hidden []float32, mask []int64, seqLen, width int) []float32 {
	out := make([]float32, width)
	var count float32
	for t := 0; t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		row := hidden[t*width : (t+1)*width]
		for j, v := range row {
			out[j] += v
		}
		count++
	}
	if count == 0 {
		return out
	}
	for j := range out {
		out[j] /= count
	}
	return out
}
