package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/park285/checkers-arena/internal/api/validation"
	"github.com/park285/checkers-arena/internal/arena"
	"github.com/park285/checkers-arena/pkg/arenadto"
	"go.uber.org/zap"
)

type handlers struct {
	svc    *arena.Service
	logger *zap.Logger
}

func (h *handlers) createRoom(c *gin.Context) {
	var req arenadto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}
	if err := validation.Struct(req); err != nil {
		badRequest(c, validation.Describe(err))
		return
	}
	snap, creatorID, err := h.svc.Reserve(c.Request.Context(), req.RoomName, req.PlayerNickname)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, arenadto.CreateRoomResponse{
		RoomID:    snap.RoomID,
		RoomName:  snap.Name,
		CreatorID: creatorID,
		Message:   h.svc.CreatedMessage(snap),
	})
}

func (h *handlers) listRooms(c *gin.Context) {
	snaps := h.svc.Rooms(true)
	out := make([]arenadto.RoomInfo, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, arena.RoomInfoView(s))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) roomInfo(c *gin.Context) {
	snap, err := h.svc.Room(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, arena.RoomInfoView(snap))
}

func (h *handlers) roomExists(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Exists(c.Param("id")))
}

func (h *handlers) roomState(c *gin.Context) {
	snap, err := h.svc.Room(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.GameStateView(snap))
}

func (h *handlers) boardImage(c *gin.Context) {
	png, err := h.svc.RenderBoard(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *handlers) deleteRoom(c *gin.Context) {
	if err := h.svc.RemoveRoom(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) lobby(c *gin.Context) {
	metas, err := h.svc.Lobby(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]arenadto.LobbyRoom, 0, len(metas))
	for _, m := range metas {
		out = append(out, arena.LobbyView(m))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) recentGames(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := h.svc.RecentGames(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]arenadto.GameRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, arena.RecordView(r))
	}
	c.JSON(http.StatusOK, out)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, arenadto.Error{Code: arenadto.CodeInvalidArgument, Message: msg})
}

func (h *handlers) fail(c *gin.Context, err error) {
	status, code := statusFor(arena.KindOf(err))
	if status == http.StatusInternalServerError {
		h.logger.Error("http_internal_error", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, arenadto.Error{Code: code, Message: h.svc.ErrorMessage(err)})
}

func statusFor(k arena.Kind) (int, string) {
	switch k {
	case arena.KindInvalid:
		return http.StatusBadRequest, arenadto.CodeInvalidArgument
	case arena.KindNotFound:
		return http.StatusNotFound, arenadto.CodeNotFound
	case arena.KindConflict:
		return http.StatusConflict, arenadto.CodeConflict
	default:
		return http.StatusInternalServerError, arenadto.CodeInternal
	}
}
