package runner

// DefaultExtensions returns the built-in extension→command table. The last
// token position is where the target filename gets appended at invocation
// time. Keys are matched exactly as split from the filename; no case
// folding.
func DefaultExtensions() map[string][]string {
	return map[string][]string{
		".hql":   {"hive", "-f"},
		".py":    {"python"},
		".R":     {"Rscript"},
		".scala": {"scala"},
		".sh":    {"bash"},
	}
}

// MergeExtensions overlays user-supplied entries on the defaults. Overrides
// win on key collision; defaults not mentioned survive untouched.
func MergeExtensions(overrides map[string][]string) map[string][]string {
	merged := DefaultExtensions()
	for ext, tokens := range overrides {
		merged[ext] = tokens
	}
	return merged
}
