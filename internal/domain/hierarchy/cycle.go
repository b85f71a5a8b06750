package hierarchy

import (
	"fmt"

	"lorekeeper/internal/domain/apperr"
)

// CanSetParent reports whether collectionID may be moved under proposedParentID.
// parents maps every live collection id to its parent id (0 for roots). A chain that
// leaves the map ends at an implicit root. The walk stops after len(parents) steps.
func CanSetParent(collectionID, proposedParentID uint, parents map[uint]uint) error {
	if proposedParentID == 0 {
		return nil
	}
	if proposedParentID == collectionID {
		return fmt.Errorf("%w: collection %d cannot be its own parent", apperr.ErrCycle, collectionID)
	}

	visited := make(map[uint]struct{}, len(parents))
	cur := proposedParentID
	for cur != 0 {
		if cur == collectionID {
			return fmt.Errorf("%w: collection %d is an ancestor of %d", apperr.ErrCycle, collectionID, proposedParentID)
		}
		if _, seen := visited[cur]; seen || len(visited) > len(parents) {
			return fmt.Errorf("%w: existing parent loop through collection %d", apperr.ErrCycle, cur)
		}
		visited[cur] = struct{}{}

		next, ok := parents[cur]
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}
