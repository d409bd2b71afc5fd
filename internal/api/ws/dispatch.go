package ws

import (
	"context"
	"encoding/json"

	"github.com/park285/checkers-arena/internal/api/validation"
	"github.com/park285/checkers-arena/internal/arena"
	"github.com/park285/checkers-arena/pkg/arenadto"
)

func (h *Hub) dispatch(ctx context.Context, c *client, env arenadto.Envelope) {
	switch env.Action {
	case arenadto.ActionCreate:
		var req arenadto.CreateRoomRequest
		if h.decode(c, env, &req) {
			h.handleCreate(ctx, c, req)
		}
	case arenadto.ActionJoin:
		var req arenadto.JoinRoomRequest
		if h.decode(c, env, &req) {
			h.handleJoin(ctx, c, req)
		}
	case arenadto.ActionMove:
		var req arenadto.MoveRequest
		if h.decode(c, env, &req) {
			h.handleMove(ctx, c, req)
		}
	case arenadto.ActionWatch:
		var req arenadto.WatchRoomRequest
		if h.decode(c, env, &req) {
			h.handleWatch(c, req)
		}
	default:
		h.sendError(c, arenadto.CodeInvalidArgument, h.svc.Text("errors.unknown_action", map[string]any{"Action": env.Action}))
	}
}

// decode unmarshals and validates the frame payload, replying with an error frame on failure.
func (h *Hub) decode(c *client, env arenadto.Envelope, dst any) bool {
	if len(env.Data) == 0 || json.Unmarshal(env.Data, dst) != nil {
		h.sendError(c, arenadto.CodeInvalidArgument, h.svc.ErrorMessage(arena.ErrInvalidArguments))
		return false
	}
	if err := validation.Struct(dst); err != nil {
		h.sendError(c, arenadto.CodeInvalidArgument, validation.Describe(err))
		return false
	}
	return true
}

func (h *Hub) fail(c *client, err error) {
	code := arenadto.CodeInternal
	switch arena.KindOf(err) {
	case arena.KindInvalid:
		code = arenadto.CodeInvalidArgument
	case arena.KindNotFound:
		code = arenadto.CodeNotFound
	case arena.KindConflict:
		code = arenadto.CodeConflict
	}
	h.sendError(c, code, h.svc.ErrorMessage(err))
}

func (h *Hub) handleCreate(ctx context.Context, c *client, req arenadto.CreateRoomRequest) {
	p, snap, err := h.svc.Create(ctx, req.RoomName, req.PlayerNickname, c.ref)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.subscribe(c, snap.RoomID)
	h.reply(c, arenadto.ActionRoomCreated, arenadto.CreateRoomResponse{
		RoomID:   snap.RoomID,
		RoomName: snap.Name,
		PlayerID: p.ID,
		Color:    p.Color.String(),
		Message:  h.svc.CreatedMessage(snap),
	})
}

func (h *Hub) handleJoin(ctx context.Context, c *client, req arenadto.JoinRoomRequest) {
	res, err := h.svc.Join(ctx, req.RoomID, req.PlayerNickname, c.ref)
	if err != nil {
		h.fail(c, err)
		return
	}
	snap := res.Snapshot
	h.subscribe(c, snap.RoomID)

	if res.Rejoined {
		if snap.Full() {
			h.broadcastState(snap)
		} else {
			h.broadcast(snap.RoomID, arenadto.ActionPlayerJoined, h.svc.RoomUpdateView(snap, h.svc.ReconnectedMessage()))
		}
		return
	}
	h.broadcast(snap.RoomID, arenadto.ActionPlayerJoined, h.svc.PlayerJoinedView(snap, res.Player))
	if snap.Full() {
		h.broadcastState(snap)
	}
}

func (h *Hub) handleMove(ctx context.Context, c *client, req arenadto.MoveRequest) {
	_, snap, err := h.svc.Move(ctx, req.RoomID, c.ref, arena.MoveFromDTO(req.Move))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.broadcastState(snap)
}

func (h *Hub) handleWatch(c *client, req arenadto.WatchRoomRequest) {
	snap, err := h.svc.Room(req.RoomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.subscribe(c, snap.RoomID)
	h.reply(c, arenadto.ActionGameState, h.svc.GameStateView(snap))
}
