package twinweb

import (
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mb0/dtm/log"
)

const writeTimeout = 10 * time.Second

// Event notifies about changed elements of one model. An event without keys
// means the model changed in a way the service cannot narrow down and the
// whole view should be refreshed.
type Event struct {
	Model string   `json:"model"`
	Keys  []string `json:"keys,omitempty"`
}

// subscribe is the first message sent on a stream connection and narrows the
// events to the given models.
type subscribe struct {
	Models []string `json:"models"`
}

// Stream subscribes to store change events over a websocket connection.
// Dashboards use the events to re-resolve affected views, the schema cache is
// unaffected as catalogs are stable for a session.
type Stream struct {
	url string
	*websocket.Dialer
	TokenProvider
	Log log.Logger
}

// NewStream returns a stream for the event endpoint at the given url.
func NewStream(url string) *Stream {
	return &Stream{url: url}
}

func (s *Stream) init() {
	if s.Dialer == nil {
		s.Dialer = websocket.DefaultDialer
	}
	if s.TokenProvider == nil {
		s.TokenProvider = (*nilProvider)(nil)
	}
	if s.Log == nil {
		s.Log = log.Root
	}
}

// Connect dials the event endpoint, subscribes to the given models and sends
// received events to the events channel until the connection ends. A clean
// close by either side returns nil, the events channel is not closed.
func (s *Stream) Connect(models []string, events chan<- *Event) error {
	s.init()
	hdr, err := s.Token(s.url)
	if err != nil {
		return errors.Wrap(err, "token")
	}
	wc, _, err := s.Dial(s.url, hdr)
	if err != nil {
		s.ClearToken(s.url)
		return errors.Wrapf(err, "dial %s", s.url)
	}
	defer wc.Close()
	wc.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = wc.WriteJSON(subscribe{Models: models})
	if err != nil {
		return errors.Wrap(err, "subscribe")
	}
	for {
		ev := new(Event)
		err = wc.ReadJSON(ev)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			if cerr, ok := err.(*websocket.CloseError); ok {
				switch cerr.Code {
				case websocket.CloseNormalClosure, websocket.CloseGoingAway:
					return nil
				}
			}
			return errors.Wrap(err, "read event")
		}
		if ev.Model == "" {
			s.Log.Debug("event without model dropped")
			continue
		}
		events <- ev
	}
}
