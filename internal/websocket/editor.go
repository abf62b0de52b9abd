package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	"github.com/rayshop/shopmap-backend/internal/canvas"
	"github.com/rayshop/shopmap-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 100 * 1024

	// Pending pan updates are applied at most once per frame interval,
	// whatever the input event rate.
	frameInterval = time.Second / 60
)

// EditorEvent is a client message in an editing session. One struct
// covers every event type; unused fields stay at their zero value.
type EditorEvent struct {
	Type          string   `json:"type"`
	HotspotID     string   `json:"hotspot_id,omitempty"`
	X             float64  `json:"x,omitempty"`
	Y             float64  `json:"y,omitempty"`
	Label         string   `json:"label,omitempty"`
	ProductID     string   `json:"product_id,omitempty"`
	SectionID     *string  `json:"section_id,omitempty"`
	PriceOverride *float64 `json:"price_override,omitempty"`
	On            bool     `json:"on,omitempty"`

	// viewport geometry, for pan clamping
	ContainerW float64 `json:"container_w,omitempty"`
	ContainerH float64 `json:"container_h,omitempty"`
	NaturalW   float64 `json:"natural_w,omitempty"`
	NaturalH   float64 `json:"natural_h,omitempty"`

	Layout *service.LayoutInput `json:"layout,omitempty"`
}

// EditorState is the session state pushed back after every mutation.
type EditorState struct {
	Type      string          `json:"type"`
	Hotspots  []model.Hotspot `json:"hotspots,omitempty"`
	Selected  string          `json:"selected,omitempty"`
	Adding    bool            `json:"adding"`
	PanOffset float64         `json:"pan_offset"`
	HotspotID string          `json:"hotspot_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Saved     bool            `json:"saved,omitempty"`
}

// EditorSession is a live editing session over one map. A single
// goroutine owns the hotspot store and pan controller, so every
// operation inside the session runs without locks; the websocket read
// loop feeds it through a channel. Only one editor session per map is
// expected at a time.
type EditorSession struct {
	conn   *websocket.Conn
	mapSvc service.ImageMapService

	shopID string
	mapID  string
	userID uint

	store  *canvas.HotspotStore
	pan    *canvas.PanController
	frames *canvas.CoalescingScheduler

	natural   canvas.Size
	container canvas.Size

	events chan EditorEvent
	done   chan struct{}
}

func NewEditorSession(conn *websocket.Conn, mapSvc service.ImageMapService, shopID string, userID uint, m *model.ImageMap) *EditorSession {
	s := &EditorSession{
		conn:   conn,
		mapSvc: mapSvc,
		shopID: shopID,
		mapID:  m.ID,
		userID: userID,
		store:  canvas.NewHotspotStore(m.Hotspots),
		frames: &canvas.CoalescingScheduler{},
		events: make(chan EditorEvent, 64),
		done:   make(chan struct{}),
	}
	if m.Width != nil {
		s.natural.W = float64(*m.Width)
	}
	if m.Height != nil {
		s.natural.H = float64(*m.Height)
	}
	s.pan = canvas.NewPanController(s.frames, s.clampPan, nil)
	return s
}

func (s *EditorSession) clampPan(offset float64) float64 {
	return canvas.Cover(s.natural, s.container, 0).ClampPan(offset)
}

// Run drives the session until the connection closes. The read pump
// runs in its own goroutine; everything else, including the frame tick
// that flushes coalesced pan updates, happens here.
func (s *EditorSession) Run() {
	logger.Info("Editor session started", map[string]interface{}{
		"shop_id": s.shopID,
		"map_id":  s.mapID,
		"user_id": s.userID,
	})

	go s.readPump()

	frames := time.NewTicker(frameInterval)
	pings := time.NewTicker(pingPeriod)
	defer func() {
		frames.Stop()
		pings.Stop()
		s.conn.Close()
		logger.Info("Editor session ended", map[string]interface{}{
			"shop_id": s.shopID,
			"map_id":  s.mapID,
			"user_id": s.userID,
		})
	}()

	s.push(s.state("state"))

	for {
		select {
		case <-s.done:
			return

		case ev := <-s.events:
			s.handle(ev)

		case <-frames.C:
			if s.frames.Pending() {
				s.frames.Flush()
				s.push(EditorState{Type: "pan", PanOffset: s.pan.Offset(), Adding: s.store.AddingMode()})
			}

		case <-pings.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *EditorSession) readPump() {
	defer close(s.done)

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("Editor websocket read error", err, map[string]interface{}{
					"map_id":  s.mapID,
					"user_id": s.userID,
				})
			}
			return
		}

		var ev EditorEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			logger.Warn("Malformed editor event", map[string]interface{}{
				"map_id": s.mapID,
				"error":  err.Error(),
			})
			continue
		}

		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *EditorSession) handle(ev EditorEvent) {
	switch ev.Type {
	case "set_adding":
		s.store.SetAddingMode(ev.On)
		s.push(s.state("state"))

	case "place":
		id, err := s.store.Create(ev.X, ev.Y)
		if err != nil {
			s.pushError(err)
			return
		}
		st := s.state("placed")
		st.HotspotID = id
		s.push(st)

	case "move":
		s.mutate(ev, s.store.Move(ev.HotspotID, ev.X, ev.Y))

	case "relabel":
		s.mutate(ev, s.store.Relabel(ev.HotspotID, ev.Label))

	case "relink":
		s.mutate(ev, s.store.Relink(ev.HotspotID, ev.ProductID))

	case "set_price_override":
		s.mutate(ev, s.store.SetPriceOverride(ev.HotspotID, ev.PriceOverride))

	case "assign_section":
		s.mutate(ev, s.store.AssignSection(ev.HotspotID, ev.SectionID))

	case "delete":
		s.mutate(ev, s.store.Delete(ev.HotspotID))

	case "select":
		s.mutate(ev, s.store.Select(ev.HotspotID))

	case "viewport":
		s.container = canvas.Size{W: ev.ContainerW, H: ev.ContainerH}
		if ev.NaturalW > 0 && ev.NaturalH > 0 {
			s.natural = canvas.Size{W: ev.NaturalW, H: ev.NaturalH}
		}
		s.pan.SetClamp(s.clampPan)

	case "pan_start":
		s.pan.Start(ev.X)

	case "pan_move":
		s.pan.Move(ev.X)

	case "pan_end":
		s.pan.End()

	case "pan_cancel":
		s.pan.Cancel()
		s.push(EditorState{Type: "pan", PanOffset: s.pan.Offset(), Adding: s.store.AddingMode()})

	case "save":
		s.save(ev)

	default:
		s.pushError(errors.New("unknown event type: " + ev.Type))
	}
}

func (s *EditorSession) mutate(ev EditorEvent, err error) {
	if err != nil {
		s.pushError(err)
		return
	}
	st := s.state("state")
	st.HotspotID = ev.HotspotID
	s.push(st)
}

// save persists the session's hotspots through the layout call. Layouts
// arriving with the save event carry the client's section list; hotspots
// come from the session store, the server-side source of truth.
func (s *EditorSession) save(ev EditorEvent) {
	layout := service.LayoutInput{}
	if ev.Layout != nil {
		layout.Sections = ev.Layout.Sections
	}
	for _, h := range s.store.List() {
		h := h
		in := service.HotspotInput{
			ID:            &h.ID,
			ProductID:     h.ProductID,
			X:             h.X,
			Y:             h.Y,
			Label:         h.Label,
			PriceOverride: h.PriceOverride,
			Confidence:    h.Confidence,
		}
		if h.SectionID != nil {
			for i := range layout.Sections {
				if layout.Sections[i].ID != nil && *layout.Sections[i].ID == *h.SectionID {
					idx := i
					in.SectionIndex = &idx
					break
				}
			}
		}
		layout.Hotspots = append(layout.Hotspots, in)
	}

	if _, err := s.mapSvc.SaveLayout(s.shopID, s.mapID, layout); err != nil {
		logger.Error("Failed to save layout from editor session", err, map[string]interface{}{
			"shop_id": s.shopID,
			"map_id":  s.mapID,
		})
		s.pushError(err)
		return
	}

	st := s.state("saved")
	st.Saved = true
	s.push(st)
}

func (s *EditorSession) state(typ string) EditorState {
	return EditorState{
		Type:      typ,
		Hotspots:  s.store.List(),
		Selected:  s.store.Selected(),
		Adding:    s.store.AddingMode(),
		PanOffset: s.pan.Offset(),
	}
}

func (s *EditorSession) pushError(err error) {
	s.push(EditorState{Type: "error", Error: err.Error(), Adding: s.store.AddingMode()})
}

func (s *EditorSession) push(st EditorState) {
	payload, err := json.Marshal(st)
	if err != nil {
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		logger.Warn("Failed to push editor state", map[string]interface{}{
			"map_id": s.mapID,
			"error":  err.Error(),
		})
	}
}
