package explorer

import (
	"context"
	"sync"

	"cloud-disk/internal/model"
)

// PendingMove is a proposed move awaiting user confirmation.
type PendingMove struct {
	SourceIDs   []string
	SourceLabel string
	TargetID    string
}

// MoveNegotiator validates proposed moves and stages the accepted one until
// the user confirms or cancels. At most one move is pending at a time; a new
// accepted proposal replaces the previous one.
type MoveNegotiator struct {
	mutations *MutationCoordinator

	mu      sync.Mutex
	pending *PendingMove
}

func NewMoveNegotiator(mutations *MutationCoordinator) *MoveNegotiator {
	return &MoveNegotiator{mutations: mutations}
}

// ProposeMove validates a move of sourceIDs onto targetID and stages it when
// valid. It rejects a move onto one of the sources themselves, and a move
// whose target's breadcrumb trail contains a source folder, which would push
// a folder into its own subtree.
//
// The ancestry check only sees the breadcrumb trail handed in, not the full
// tree, so a cycle through a folder absent from that trail is caught by the
// server instead. Rejection is silent: no PendingMove and no notification;
// the surface renders it as a disabled drop target.
func (n *MoveNegotiator) ProposeMove(sourceIDs []string, sourceLabel, targetID string, targetAncestry []model.PathNode) bool {
	if len(sourceIDs) == 0 || targetID == "" {
		return false
	}

	sources := make(map[string]struct{}, len(sourceIDs))
	for _, id := range sourceIDs {
		if id == targetID {
			return false
		}
		sources[id] = struct{}{}
	}

	for _, node := range targetAncestry {
		if _, isSource := sources[node.ID]; isSource {
			return false
		}
	}

	ids := make([]string, len(sourceIDs))
	copy(ids, sourceIDs)

	n.mu.Lock()
	n.pending = &PendingMove{
		SourceIDs:   ids,
		SourceLabel: sourceLabel,
		TargetID:    targetID,
	}
	n.mu.Unlock()

	return true
}

// Pending returns a copy of the staged move, or nil when none is pending.
func (n *MoveNegotiator) Pending() *PendingMove {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending == nil {
		return nil
	}

	ids := make([]string, len(n.pending.SourceIDs))
	copy(ids, n.pending.SourceIDs)
	return &PendingMove{
		SourceIDs:   ids,
		SourceLabel: n.pending.SourceLabel,
		TargetID:    n.pending.TargetID,
	}
}

// Confirm hands the staged move to the mutation coordinator. The pending move
// is cleared before the call, so it is gone whether the move succeeds or not;
// the coordinator's own handling governs listing state and notifications.
func (n *MoveNegotiator) Confirm(ctx context.Context) error {
	n.mu.Lock()
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()

	if pending == nil {
		return nil
	}

	return n.mutations.Move(ctx, pending.SourceIDs, pending.TargetID)
}

// Cancel drops the staged move without side effects.
func (n *MoveNegotiator) Cancel() {
	n.mu.Lock()
	n.pending = nil
	n.mu.Unlock()
}
