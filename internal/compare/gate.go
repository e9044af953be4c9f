// Package compare decides whether two classified entries can be compared,
// diffs their analysis results field by field, and aggregates batches.
package compare

import "github.com/bcnelson/addrscope/internal/domain"

const (
	noteHostnameWithIP     = "Uses DNS resolution for comparison"
	messageIncompatible    = "Inputs belong to incompatible families and cannot be compared."
	warningHostnameWithDNS = "Hostname comparison uses DNS resolution - multiple IPs may be resolved"
)

// CanCompare reports whether two entry types have a meaningful comparison.
// The verdict is symmetric in its arguments.
func CanCompare(typeA, typeB domain.EntryType) domain.Comparability {
	if typeA == typeB {
		return domain.Comparability{Comparable: true, Reason: domain.ReasonSameType}
	}

	if hostnameWithIP(typeA, typeB) {
		return domain.Comparability{
			Comparable: true,
			Reason:     domain.ReasonHostnameWithIP,
			Note:       noteHostnameWithIP,
		}
	}

	return domain.Comparability{
		Comparable: false,
		Reason:     domain.ReasonIncompatibleFamilies,
		Message:    messageIncompatible,
	}
}

func hostnameWithIP(typeA, typeB domain.EntryType) bool {
	return (typeA == domain.EntryHostname && typeB.IsIP()) ||
		(typeB == domain.EntryHostname && typeA.IsIP())
}
