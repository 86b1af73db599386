package storage

import "strings"

// DefaultNamespace holds conversations whose id has no namespace segment.
const DefaultNamespace = "default"

// SplitID splits id on its first "/" into namespace and local id. Ids
// without a usable namespace fall under DefaultNamespace whole.
func SplitID(id string) (namespace, local string) {
	ns, rest, found := strings.Cut(id, "/")
	if !found || ns == "" || rest == "" {
		return DefaultNamespace, id
	}
	return ns, rest
}

// JoinID is the inverse of SplitID.
func JoinID(namespace, local string) string {
	if namespace == DefaultNamespace {
		return local
	}
	return namespace + "/" + local
}

// CanonicalID returns the one spelling of id shared by every alias that
// stores to the same place: "c" and "default/c" both yield "c".
func CanonicalID(id string) string {
	return JoinID(SplitID(id))
}
