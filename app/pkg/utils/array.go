package utils

// Contains reports whether s is one of items.
func Contains(s string, items []string) bool {
	for _, v := range items {
		if v == s {
			return true
		}
	}
	return false
}

// RemoveDuplicates keeps the first occurrence of each string.
func RemoveDuplicates(arr []string) []string {
	encountered := map[string]bool{}
	var result []string

	for _, v := range arr {
		if encountered[v] {
			continue
		}
		encountered[v] = true
		result = append(result, v)
	}

	return result
}
