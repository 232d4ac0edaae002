// Package authoring holds the pure parts of exam editing.
package authoring

import "github.com/google/uuid"

// Plan lists what to do to turn a stored collection into an incoming one.
type Plan[T any] struct {
	Create []T
	Update []T
	Delete []uuid.UUID
}

// Reconcile matches incoming items to existing ones by key. Incoming items
// whose key is nil or unknown are created, known keys are updated, and
// existing keys missing from incoming are deleted. Delete keeps the order of
// existing.
func Reconcile[T any](existing, incoming []T, key func(T) uuid.UUID) Plan[T] {
	known := make(map[uuid.UUID]struct{}, len(existing))
	for _, e := range existing {
		known[key(e)] = struct{}{}
	}

	var plan Plan[T]
	kept := make(map[uuid.UUID]struct{}, len(incoming))
	for _, in := range incoming {
		k := key(in)
		if _, ok := known[k]; ok && k != uuid.Nil {
			if _, dup := kept[k]; dup {
				// second occurrence of the same key is a new item
				plan.Create = append(plan.Create, in)
				continue
			}
			kept[k] = struct{}{}
			plan.Update = append(plan.Update, in)
			continue
		}
		plan.Create = append(plan.Create, in)
	}
	for _, e := range existing {
		if _, ok := kept[key(e)]; !ok {
			plan.Delete = append(plan.Delete, key(e))
		}
	}
	return plan
}
