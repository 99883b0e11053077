package repository

import "github.com/Kosench/tinyapp/internal/model"

// URLsForUser returns the records owned by userID, keeping the input order.
// The result is never nil. This is a full scan; stores that grow past a
// demo-sized dataset answer ListByOwner from an owner_id index instead.
func URLsForUser(userID string, urls []model.URL) []model.URL {
	owned := make([]model.URL, 0)
	if userID == "" {
		return owned
	}

	for _, u := range urls {
		if u.OwnerID == userID {
			owned = append(owned, u)
		}
	}

	return owned
}

// CountUniqueVisitors считает различные VisitorID
func CountUniqueVisitors(visits []model.Visit) int {
	seen := make(map[string]struct{}, len(visits))
	for _, v := range visits {
		seen[v.VisitorID] = struct{}{}
	}
	return len(seen)
}
