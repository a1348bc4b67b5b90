package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/geocalc"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/validator"
	ws "github.com/Temutjin2k/crowdguard/pkg/wsHub"
)

type LiveFeed interface {
	Subscribe(ctx context.Context, id uuid.UUID, loc models.Location) error
	Unsubscribe(id uuid.UUID)
	HandleMessage(ctx context.Context, id uuid.UUID, msg map[string]any) error
}

type ConnRegistry interface {
	Add(conn *ws.Conn) error
	Delete(id uuid.UUID) error
}

type Live struct {
	feed     LiveFeed
	conns    ConnRegistry
	upgrader websocket.Upgrader
	l        logger.Logger
}

// NewLive accepts websocket clients from the given origins; an empty list allows any origin.
func NewLive(feed LiveFeed, conns ConnRegistry, allowedOrigins []string, l logger.Logger) *Live {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &Live{
		feed:  feed,
		conns: conns,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
		l: l,
	}
}

// HandleWebSocket godoc
// @Summary      Live tracker
// @Description  Upgrades to a websocket that receives hotspots around the tracked location
// @Description  every poll interval and a zone summary for every simulation frame.
// @Description  Clients move the tracked location with {"type":"location","lat":..,"lng":..}.
// @Tags         Hotspots
// @Param        lat  query  number  true  "latitude"
// @Param        lng  query  number  true  "longitude"
// @Success      101
// @Failure      422  {object}  map[string]any
// @Router       /ws/live [get]
func (h *Live) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "live_ws")

	v := validator.New()
	qs := r.URL.Query()
	v.Check(qs.Has("lat"), "lat", "must be provided")
	v.Check(qs.Has("lng"), "lng", "must be provided")
	loc := models.Location{
		Lat: readFloat(qs, "lat", 0, v),
		Lng: readFloat(qs, "lng", 0, v),
	}
	v.Check(geocalc.ValidCoordinate(loc.Lat, loc.Lng), "location", types.ErrInvalidCoordinates.Error())
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered the client
		h.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	id := uuid.New()
	ctx = wrap.WithUserID(ctx, id.String())

	conn := ws.NewConn(ctx, id, raw)
	if err := h.conns.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register websocket connection", err)
		_ = conn.Close()
		return
	}
	defer func() {
		h.feed.Unsubscribe(id)
		if err := h.conns.Delete(id); err != nil {
			h.l.Debug(ctx, "websocket connection already removed", "error", err.Error())
		}
	}()

	if err := h.feed.Subscribe(ctx, id, loc); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to subscribe live client", err)
		return
	}

	err = conn.Listen(func(msg map[string]any) error {
		return h.feed.HandleMessage(ctx, id, msg)
	})
	h.l.Info(ctx, "live client disconnected", "reason", err.Error())
}
