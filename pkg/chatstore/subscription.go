package chatstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// eventEnvelope matches the server's realtime event frame.
type eventEnvelope struct {
	Kind        string          `json:"kind"`
	CommunityID int64           `json:"communityId"`
	Payload     json.RawMessage `json:"payload"`
}

// Subscription consumes a community's realtime feed over a websocket
// connection and applies each event to a store.
type Subscription struct {
	conn   *websocket.Conn
	store  *Store
	logger zerolog.Logger
}

// Subscribe dials the community's websocket endpoint. The JWT is passed
// as a query parameter, the same way browser clients authenticate.
func Subscribe(ctx context.Context, wsURL, token string, store *Store, logger zerolog.Logger) (*Subscription, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	return &Subscription{
		conn:   conn,
		store:  store,
		logger: logger,
	}, nil
}

// Listen reads events until the connection closes or the context is
// cancelled. The first frame is the snapshot; everything after is
// incremental.
func (s *Subscription) Listen(ctx context.Context) error {
	defer s.conn.Close()

	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	for {
		_, reader, err := s.conn.NextReader()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("error reading event: %w", err)
		}
		if err := s.readFrame(reader); err != nil {
			return fmt.Errorf("error decoding event frame: %w", err)
		}
	}
}

// readFrame dispatches every envelope in one frame. The server packs
// queued events into a single frame separated by newlines, so a frame
// can carry more than one envelope.
func (s *Subscription) readFrame(r io.Reader) error {
	dec := json.NewDecoder(r)
	for {
		var ev eventEnvelope
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		s.dispatch(&ev)
	}
}

// Close terminates the subscription.
func (s *Subscription) Close() error {
	return s.conn.Close()
}

func (s *Subscription) dispatch(ev *eventEnvelope) {
	switch ev.Kind {
	case "snapshot":
		var payload struct {
			Messages []Message `json:"messages"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to decode snapshot payload")
			return
		}
		s.store.ApplySnapshot(payload.Messages)

	case "message.created":
		var m Message
		if err := json.Unmarshal(ev.Payload, &m); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to decode message payload")
			return
		}
		s.store.ApplyCreated(m)

	case "message.updated", "message.pinned", "message.unpinned", "question.answered":
		var m Message
		if err := json.Unmarshal(ev.Payload, &m); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to decode message payload")
			return
		}
		s.store.ApplyUpdated(m)

	case "message.deleted":
		var payload struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to decode deletion payload")
			return
		}
		s.store.ApplyDeleted(payload.ID)

	case "reaction.updated":
		var payload struct {
			MessageID int64             `json:"messageId"`
			Reactions []ReactionSummary `json:"reactions"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to decode reaction payload")
			return
		}
		s.store.ApplyReactions(payload.MessageID, payload.Reactions)

	default:
		s.logger.Debug().Str("kind", ev.Kind).Msg("Ignoring unknown event kind")
	}
}

// RESTTransport issues message writes through the HTTP API.
type RESTTransport struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// SendMessage posts a TEXT message to the community's channel.
func (t *RESTTransport) SendMessage(ctx context.Context, communityID int64, content string) error {
	body, err := json.Marshal(map[string]interface{}{
		"kind":    "TEXT",
		"content": content,
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/api/v1/communities/%d/messages", t.BaseURL, communityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.Token)

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("message write rejected with status %d", resp.StatusCode)
	}
	return nil
}
