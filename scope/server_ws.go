package scope

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
)

const FramesPath = "/frames"

type websocketServer struct {
	address  string
	listener net.Listener
	server   *http.Server
	upgrader websocket.Upgrader
	hub      *hub
}

func newWebsocketServer(address string, hub *hub) *websocketServer {
	result := &websocketServer{
		address: address,
		hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(FramesPath, result.handleFrames)
	result.server = &http.Server{Handler: mux}

	return result
}

func (s *websocketServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *websocketServer) listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("cannot listen on address %s: %w", s.address, err)
	}
	s.listener = listener
	return nil
}

func (s *websocketServer) serve() error {
	err := s.server.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *websocketServer) Stop() {
	s.server.Close()
}

func (s *websocketServer) handleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Debug("cannot upgrade to websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	frames, ok := s.hub.getFrameStream()
	if !ok {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case frame, open := <-frames:
			if !open {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			message, err := protojson.Marshal(frame)
			if err != nil {
				zap.L().Error("cannot marshal frame", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				zap.L().Debug("cannot write frame to websocket", zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}
