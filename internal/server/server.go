package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/kv"
	"github.com/tablestakes/holdem/internal/room"
	"github.com/tablestakes/holdem/internal/stats"
	"github.com/tablestakes/holdem/internal/wallet"
)

// Server is the websocket front end. It owns the room registry and fans
// engine notifications out to connected clients.
type Server struct {
	cfg      *Config
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock

	ledgers  *wallet.Ledgers
	recorder *stats.Recorder
	registry *room.Registry
	monitor  *room.Monitor
	eval     game.Evaluator
	extra    []game.Sink

	register   chan *Connection
	unregister chan *Connection

	mu          sync.RWMutex
	connections map[*Connection]bool
	players     map[string]*Connection

	rng    *rand.Rand
	rngMu  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithExtraSinks adds sinks (e.g. a NATS relay) alongside the websocket sink.
func WithExtraSinks(sinks ...game.Sink) ServerOption {
	return func(s *Server) { s.extra = append(s.extra, sinks...) }
}

// WithServerClock substitutes the clock used for turn timing.
func WithServerClock(clock quartz.Clock) ServerOption {
	return func(s *Server) { s.clock = clock }
}

// New creates a server. The evaluator is the external hand-ranking
// collaborator every room's showdown consults.
func New(cfg *Config, store kv.Store, eval game.Evaluator, logger *log.Logger, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		clock:       quartz.NewReal(),
		eval:        eval,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		connections: make(map[*Connection]bool),
		players:     make(map[string]*Connection),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ledgers = wallet.NewLedgers(store,
		wallet.WithClock(s.clock),
		wallet.WithStartingStake(cfg.StartingStake()),
	)
	s.recorder = stats.NewRecorder(store)
	s.registry = room.NewRegistry(s.ledgers, s.engineFor, logger)
	s.monitor = room.NewMonitor(s.registry, s.clock, cfg.TurnTimeout("default"), logger)
	return s
}

// engineFor builds the engine for a newly created room.
func (s *Server) engineFor(roomID string) *game.Engine {
	sinks := append(game.MultiSink{&wsSink{server: s}}, s.extra...)
	return game.NewEngine(roomID, s.cfg.GameConfig(roomID), s.ledgers,
		game.WithEvaluator(s.eval),
		game.WithSink(sinks),
		game.WithRecorder(s.recorder),
		game.WithClock(s.clock),
		game.WithLogger(s.logger),
	)
}

// Registry exposes the room registry.
func (s *Server) Registry() *room.Registry { return s.registry }

// Start serves websocket clients and runs the turn-timeout monitor until the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	httpServer := &http.Server{Addr: s.cfg.Server.Addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { s.run(ctx); return nil })
	g.Go(func() error {
		err := s.monitor.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// Stop disconnects all clients.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

func (s *Server) run(ctx context.Context) {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				if id := conn.PlayerID(); id != "" && s.players[id] == conn {
					delete(s.players, id)
				}
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client disconnected", "total", total)

		case <-ctx.Done():
			return

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s, s.logger)
	s.register <- client
	client.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleMessage dispatches one inbound client message.
func (s *Server) handleMessage(c *Connection, msg *Message) {
	switch msg.Type {
	case MessageTypeAuth:
		s.handleAuth(c, msg.Data)
	case MessageTypeJoin:
		s.handleJoin(c, msg.Data)
	case MessageTypeStart:
		s.handleStart(c, msg.Data)
	case MessageTypeAct:
		s.handleAct(c, msg.Data)
	case MessageTypeBalance:
		s.handleBalance(c)
	case MessageTypeBonus:
		s.handleBonus(c)
	case MessageTypeStats:
		s.handleStats(c)
	default:
		c.sendError("unknown_type", "unknown message type")
	}
}

func (s *Server) handleAuth(c *Connection, raw json.RawMessage) {
	var data AuthData
	if err := json.Unmarshal(raw, &data); err != nil || data.PlayerID == "" {
		c.sendError("bad_auth", "player_id is required")
		return
	}
	if data.Name == "" {
		data.Name = data.PlayerID
	}
	c.SetIdentity(data.PlayerID, data.Name)

	s.mu.Lock()
	s.players[data.PlayerID] = c
	s.mu.Unlock()

	// Seeds the starting stake on first sight.
	s.ledgers.Wallet(data.PlayerID)
	s.reply(c, MessageTypeAuthOK, AuthOKData{PlayerID: data.PlayerID})
}

func (s *Server) handleJoin(c *Connection, raw json.RawMessage) {
	playerID := c.PlayerID()
	if playerID == "" {
		c.sendError("unauthenticated", "authenticate first")
		return
	}

	var data JoinData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		c.sendError("bad_join", "room_id is required")
		return
	}

	rm := s.registry.Room(data.RoomID)
	if err := rm.Seat(playerID, c.Name()); err != nil {
		c.sendError("seat_rejected", err.Error())
		return
	}
	c.SetRoom(data.RoomID)

	s.reply(c, MessageTypeJoined, JoinedData{
		RoomID:  data.RoomID,
		Players: len(rm.Players()),
		State:   rm.State().String(),
	})
}

func (s *Server) handleStart(c *Connection, raw json.RawMessage) {
	var data StartData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		c.sendError("bad_start", "room_id is required")
		return
	}
	if err := s.registry.Room(data.RoomID).Start(); err != nil {
		c.sendError("start_rejected", err.Error())
	}
}

func (s *Server) handleAct(c *Connection, raw json.RawMessage) {
	playerID := c.PlayerID()
	if playerID == "" {
		c.sendError("unauthenticated", "authenticate first")
		return
	}

	var data ActData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		c.sendError("bad_act", "room_id and action are required")
		return
	}
	action, ok := game.ParseAction(data.Action)
	if !ok {
		c.sendError("bad_act", "unknown action")
		return
	}

	// Out-of-turn and wrong-state actions are dropped by the engine without
	// error; only invariant violations surface here.
	if err := s.registry.Room(data.RoomID).Act(playerID, action, data.Amount); err != nil {
		c.sendError("act_failed", err.Error())
	}
}

func (s *Server) handleBalance(c *Connection) {
	playerID := c.PlayerID()
	if playerID == "" {
		c.sendError("unauthenticated", "authenticate first")
		return
	}
	value := s.ledgers.Wallet(playerID).Value()
	s.reply(c, MessageTypeBalanceInfo, BalanceInfoData{Balance: value})
}

func (s *Server) handleBonus(c *Connection) {
	playerID := c.PlayerID()
	if playerID == "" {
		c.sendError("unauthenticated", "authenticate first")
		return
	}

	s.rngMu.Lock()
	roll := s.rng.Intn(6) + 1
	s.rngMu.Unlock()
	bonus := wallet.DailyBonus(roll)

	balance, err := s.ledgers.Wallet(playerID).AddDaily(bonus)
	if err != nil {
		c.sendError("bonus_rejected", err.Error())
		return
	}
	s.reply(c, MessageTypeBonusResult, BonusResultData{Bonus: bonus, Balance: balance})
}

func (s *Server) handleStats(c *Connection) {
	playerID := c.PlayerID()
	if playerID == "" {
		c.sendError("unauthenticated", "authenticate first")
		return
	}
	s.reply(c, MessageTypeStatsInfo, s.recorder.Player(playerID))
}

func (s *Server) reply(c *Connection, messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		s.logger.Error("failed to build message", "type", messageType, "error", err)
		return
	}
	_ = c.Send(msg)
}

// sendToPlayer delivers a private message to one player's connection.
func (s *Server) sendToPlayer(playerID string, messageType MessageType, data any) {
	s.mu.RLock()
	conn, ok := s.players[playerID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	s.reply(conn, messageType, data)
}

// broadcastToRoom delivers a message to every connection in a room.
func (s *Server) broadcastToRoom(roomID string, messageType MessageType, data any) {
	s.mu.RLock()
	var targets []*Connection
	for conn := range s.connections {
		if conn.RoomID() == roomID {
			targets = append(targets, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range targets {
		s.reply(conn, messageType, data)
	}
}
