package capture

import (
	"context"
	"strings"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/ident"
)

// Resolver maps a direct system identifier or a room code to the canonical
// system identifier.
type Resolver struct {
	store SystemStore
}

func NewResolver(store SystemStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the canonical identifier for the addressed system. A
// non-blank direct identifier is authoritative: it is returned as-is and the
// room-code path is never consulted. Otherwise the trimmed room code is
// looked up, limited to one result.
func (r *Resolver) Resolve(ctx context.Context, systemID any, roomCode string) (ident.ID, error) {
	if id := ident.Normalize(systemID); !id.IsNone() {
		return id, nil
	}

	code := strings.TrimSpace(roomCode)
	if code == "" {
		return ident.ID{}, newError(KindInvalidArgument, "system_id or room_code required")
	}

	sys, err := r.store.FindSystemByRoomCode(ctx, code)
	if err != nil {
		return ident.ID{}, wrapError(KindResolutionFailed, "resolve system by room_code", err)
	}
	if sys == nil {
		return ident.ID{}, newError(KindNotFound, "system not found for provided room_code")
	}

	return ident.Normalize(sys.ID), nil
}
