package domain

// =============================================================================
// User / Organization Membership
// =============================================================================
//
// Invariant: after either mutator returns,
//
//	org.ID ∈ user.OrganizationIDs  ⇔  user.ID ∈ org.MemberIDs
//
// The relation is stored as id sets on both sides (adjacency by id, never
// object links). Both operations are total over any two in-memory entities:
// a duplicate add is idempotent, removing a non-member is a no-op.

// AddOrganization puts the user into the organization, updating both sides.
func AddOrganization(u *DegaUser, o *Organization) {
	u.OrganizationIDs = addID(u.OrganizationIDs, o.ID)
	o.MemberIDs = addID(o.MemberIDs, u.ID)
}

// RemoveOrganization takes the user out of the organization, updating both
// sides. The user's default organization reference is left alone: it is a
// reference, not a membership.
func RemoveOrganization(u *DegaUser, o *Organization) {
	u.OrganizationIDs = removeID(u.OrganizationIDs, o.ID)
	o.MemberIDs = removeID(o.MemberIDs, u.ID)
}

// HasOrganization reports whether the user is a member of the organization
// with the given id.
func (u *DegaUser) HasOrganization(orgID string) bool {
	return containsID(u.OrganizationIDs, orgID)
}

// HasMember reports whether the organization contains the user with the
// given id.
func (o *Organization) HasMember(userID string) bool {
	return containsID(o.MemberIDs, userID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func addID(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
