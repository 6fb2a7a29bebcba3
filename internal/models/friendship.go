package models

// Friendships are kept as two sets on each user. A request from A to B puts A
// in B's PendingRequests; accepting moves A into B's Friends and B into A's.

// IsFriend reports whether userID is in the friend set
func (u *User) IsFriend(userID string) bool {
	return containsID(u.Friends, userID)
}

// HasPendingRequestFrom reports whether userID has asked to be friends
func (u *User) HasPendingRequestFrom(userID string) bool {
	return containsID(u.PendingRequests, userID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
