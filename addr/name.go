// Package addr deals with the logical names of template elements.
package addr

// ValidName returns true if the given name is usable as a CloudFormation
// logical ID, which may contain only ASCII letters and digits.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= '0' && r <= '9':
			continue
		case r >= 'a' && r <= 'z':
			continue
		case r >= 'A' && r <= 'Z':
			continue
		default:
			return false
		}
	}
	return true
}
