package controller

import (
	"context"
	"strings"
	"sync"

	"creatorpulse/models"
	"creatorpulse/state"
	"creatorpulse/utils"
	"creatorpulse/viewmodel"
	"creatorpulse/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	localsWSSession = "ws_session"
	localsWSPage    = "ws_page"
	localsWSClient  = "ws_client"
)

// socketMessage is what the browser sends over the inbox socket.
type socketMessage struct {
	Action string              `json:"action"`
	View   viewmodel.InboxView `json:"view"`
	Query  string              `json:"query"`
}

// UpgradeInbox admits websocket upgrades for one client's inbox.
func (ic *InboxController) UpgradeInbox(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	clientID, err := paramID(c, "clientId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	sess, page := sessionAndPage(c)
	if page == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing page state", nil)
	}
	page.SelectClient(&clientID)
	c.Locals(localsWSSession, sess)
	c.Locals(localsWSPage, page)
	c.Locals(localsWSClient, clientID)
	return c.Next()
}

type inboxSocket struct {
	ic       *InboxController
	conn     *websocket.Conn
	sess     *models.Session
	page     *state.Page
	clientID int64

	writeMu sync.Mutex
	viewMu  sync.Mutex
	view    viewmodel.InboxView
}

func (s *inboxSocket) send(event worker.Event) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(event)
}

func (s *inboxSocket) currentView() viewmodel.InboxView {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	return s.view
}

func (s *inboxSocket) setView(view viewmodel.InboxView) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	s.view = view.Normalize()
}

// pushInbox derives the inbox under the socket's current view and sends it.
func (s *inboxSocket) pushInbox(ctx context.Context) error {
	rows, err := s.ic.inbox.Emails(ctx, s.sess, &s.clientID, s.currentView())
	if err != nil {
		_ = s.send(worker.Event{Type: "error", Data: utils.Toast{Type: utils.ToastError, Message: "Error loading inbox"}})
		return err
	}
	return s.send(worker.Event{Type: "inbox", Data: rows})
}

// searchCreators runs a live creator search. Only the latest search of the
// page is delivered; older responses are dropped.
func (s *inboxSocket) searchCreators(ctx context.Context, query string) {
	ticket := s.page.Slots.Begin("creators")
	creators, err := s.ic.reader.Creators(ctx, s.sess, models.CreatorFilters{Search: strings.TrimSpace(query)})
	if !s.page.Slots.Current(ticket) {
		return
	}
	if err != nil {
		utils.Logger("inbox_ws").WithError(err).Warn("creator search failed")
		_ = s.send(worker.Event{Type: "error", Data: utils.Toast{Type: utils.ToastError, Message: "Error searching creators"}})
		return
	}
	_ = s.send(worker.Event{Type: "creators", Data: creators})
}

// InboxSocket keeps a browser's inbox live: the inbox is re-read on every
// poll tick and whenever another request changes it, and search input is
// debounced before it is applied.
func (ic *InboxController) InboxSocket(conn *websocket.Conn) {
	defer conn.Close()

	sess, _ := conn.Locals(localsWSSession).(*models.Session)
	page, _ := conn.Locals(localsWSPage).(*state.Page)
	clientID, _ := conn.Locals(localsWSClient).(int64)
	if sess == nil || page == nil || clientID == 0 {
		return
	}
	log := utils.Logger("inbox_ws").WithField("client_id", clientID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &inboxSocket{ic: ic, conn: conn, sess: sess, page: page, clientID: clientID}
	s.setView(viewmodel.InboxView{})

	// Subscribe before the first push so a change made right after it is seen.
	events, unsubscribe := ic.hub.Subscribe(inboxTopic(clientID))
	defer unsubscribe()
	go func() {
		for event := range events {
			if event.Type == EventInboxChanged {
				if err := s.pushInbox(ctx); err != nil {
					log.WithError(err).Warn("inbox push failed")
				}
			}
		}
	}()

	if err := s.pushInbox(ctx); err != nil {
		log.WithError(err).Warn("initial inbox load failed")
	}

	poller := worker.NewInboxPoller(inboxTopic(clientID), ic.pollInterval, func(ctx context.Context) error {
		if err := ic.inbox.Refresh(sess, &clientID); err != nil {
			return err
		}
		return s.pushInbox(ctx)
	})
	if err := poller.Start(ctx); err != nil {
		log.WithError(err).Error("inbox poller did not start")
		return
	}
	defer poller.Stop()

	viewDebounce := utils.NewDebouncer(ic.debounce)
	defer viewDebounce.Stop()
	searchDebounce := utils.NewDebouncer(ic.debounce)
	defer searchDebounce.Stop()

	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("inbox socket closed")
			}
			return
		}

		switch msg.Action {
		case "view":
			s.setView(msg.View)
			viewDebounce.Trigger(func() { _ = s.pushInbox(ctx) })
		case "refresh":
			if err := ic.inbox.Refresh(sess, &clientID); err != nil {
				log.WithError(err).Warn("inbox refresh failed")
			}
			_ = s.pushInbox(ctx)
		case "search_creators":
			query := msg.Query
			searchDebounce.Trigger(func() { s.searchCreators(ctx, query) })
		default:
			_ = s.send(worker.Event{Type: "error", Data: utils.Toast{Type: utils.ToastError, Message: "Unknown action"}})
		}
	}
}
