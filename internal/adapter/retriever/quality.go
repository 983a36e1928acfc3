package retriever

// PrecisionAtK is the fraction of retrieved URIs that are relevant.
func PrecisionAtK(retrieved, relevant []string) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	return float64(countHits(retrieved, relevant)) / float64(len(retrieved))
}

// RecallAtK is the fraction of relevant URIs that were retrieved.
func RecallAtK(retrieved, relevant []string) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(countHits(retrieved, relevant)) / float64(len(relevant))
}

// ReciprocalRank is 1/rank of the first relevant URI, or 0 when none was retrieved.
func ReciprocalRank(retrieved, relevant []string) float64 {
	set := toSet(relevant)
	for i, uri := range retrieved {
		if _, ok := set[uri]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

func countHits(retrieved, relevant []string) int {
	set := toSet(relevant)
	hits := 0
	for _, uri := range retrieved {
		if _, ok := set[uri]; ok {
			hits++
		}
	}
	return hits
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
