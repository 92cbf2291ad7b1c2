package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mgpai22/subedit/internal/playback"
	"github.com/mgpai22/subedit/internal/subtitle"
)

// messages from the player
type clientMessage struct {
	Type      string  `json:"type"`                // "time", "jump" or "skip"
	T         float64 `json:"t,omitempty"`         // playback clock in seconds
	Target    string  `json:"target,omitempty"`    // jump input
	Direction string  `json:"direction,omitempty"` // skip: "back" or "forward"
}

// messages to the player
type serverMessage struct {
	Type       string       `json:"type"` // "hello", "active", "jump", "skip", "error"
	Session    string       `json:"session,omitempty"`
	T          float64      `json:"t"`
	Active     bool         `json:"active"`
	Segment    *segmentView `json:"segment,omitempty"`
	HMS        string       `json:"hms,omitempty"`
	CanBack    bool         `json:"can_back,omitempty"`
	CanForward bool         `json:"can_forward,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// session state for one player connection
type session struct {
	id     string
	cursor subtitle.Cursor
	// last reported segment id, 0 when none
	lastID int
	sent   bool
}

// ws streams the active segment. The player reports its clock with "time"
// messages, typically every 250ms; a reply is only sent when the active
// segment changes.
func (s *Server) ws(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess := &session{id: uuid.NewString()}
	log := s.logger.With("session", sess.id)
	log.Debugw("player connected")
	defer log.Debugw("player disconnected")

	if err := conn.WriteJSON(serverMessage{Type: "hello", Session: sess.id}); err != nil {
		return
	}

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugw("websocket read failed", "error", err)
			}
			return
		}

		reply, ok := s.handleMessage(sess, msg)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Debugw("websocket write failed", "error", err)
			return
		}
	}
}

// returns the reply for msg, if any
func (s *Server) handleMessage(sess *session, msg clientMessage) (serverMessage, bool) {
	switch msg.Type {
	case "time":
		at := playback.FromSeconds(msg.T)
		var (
			seg    subtitle.Segment
			active bool
		)
		s.doc.Read(func(sub *subtitle.Subtitle, _ time.Duration) {
			var i int
			if i, active = sess.cursor.Update(sub.Segments, at); active {
				seg = sub.Segments[i]
			}
		})

		id := 0
		if active {
			id = seg.ID
		}
		if sess.sent && id == sess.lastID {
			return serverMessage{}, false
		}
		sess.sent, sess.lastID = true, id

		reply := serverMessage{Type: "active", T: msg.T, Active: active}
		if active {
			v := s.view(seg)
			reply.Segment = &v
		}
		return reply, true

	case "jump":
		var (
			at time.Duration
			ok bool
		)
		s.doc.Read(func(sub *subtitle.Subtitle, duration time.Duration) {
			at, ok = playback.ResolveJump(msg.Target, sub, duration)
		})
		if !ok {
			return serverMessage{Type: "error", Error: "invalid jump target"}, true
		}
		return serverMessage{Type: "jump", T: at.Seconds(), HMS: playback.FormatHMS(at)}, true

	case "skip":
		var step time.Duration
		switch msg.Direction {
		case "back":
			step = -s.skip
		case "forward":
			step = s.skip
		default:
			return serverMessage{Type: "error", Error: "skip direction must be back or forward"}, true
		}
		var duration time.Duration
		s.doc.Read(func(sub *subtitle.Subtitle, d time.Duration) {
			duration = d
			if duration <= 0 {
				duration = sub.End()
			}
		})
		at := playback.SkipBy(playback.FromSeconds(msg.T), step, duration)
		return serverMessage{
			Type:       "skip",
			T:          at.Seconds(),
			HMS:        playback.FormatHMS(at),
			CanBack:    playback.CanSkipBack(at),
			CanForward: playback.CanSkipForward(at, duration),
		}, true

	default:
		return serverMessage{Type: "error", Error: "unknown message type " + msg.Type}, true
	}
}
