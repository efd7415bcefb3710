package bot

// Authorized reports whether login belongs to the approver set.
// Matching is exact and case-sensitive; there is no owner or admin
// bypass.
func Authorized(login string, approvers []string) bool {
	for _, a := range approvers {
		if a == login {
			return true
		}
	}
	return false
}
