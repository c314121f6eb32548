package scope

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server serves frames over gRPC and, if a websocket address is given, over websocket to remote clients.
type Server struct {
	grpcAddress      string
	websocketAddress string
	outBufferSize    int

	hub        *hub
	grpc       *grpcServer
	websocket  *websocketServer
	serverLock *sync.Mutex
}

// NewServer creates a new scope server that listens on the given addresses. An empty address disables the transport.
func NewServer(grpcAddress string, websocketAddress string) *Server {
	return &Server{
		grpcAddress:      grpcAddress,
		websocketAddress: websocketAddress,
		outBufferSize:    defaultOutBufferSize,
		serverLock:       &sync.Mutex{},
	}
}

func (s *Server) Active() bool {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	return s.hub != nil
}

// Addr returns the address of the gRPC listener.
func (s *Server) Addr() net.Addr {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	if s.grpc != nil {
		return s.grpc.Addr()
	}
	return nil
}

// WebsocketAddr returns the address of the websocket listener.
func (s *Server) WebsocketAddr() net.Addr {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	if s.websocket != nil {
		return s.websocket.Addr()
	}
	return nil
}

func (s *Server) Start() error {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	if s.hub != nil {
		return fmt.Errorf("scope was already started")
	}
	if s.grpcAddress == "" && s.websocketAddress == "" {
		return fmt.Errorf("no scope address configured")
	}

	hub := newHub(s.outBufferSize)

	var grpcTransport *grpcServer
	if s.grpcAddress != "" {
		var err error
		grpcTransport, err = newGRPCServer(s.grpcAddress, hub)
		if err != nil {
			return err
		}
		err = grpcTransport.listen()
		if err != nil {
			return err
		}
	}

	var websocketTransport *websocketServer
	if s.websocketAddress != "" {
		websocketTransport = newWebsocketServer(s.websocketAddress, hub)
		err := websocketTransport.listen()
		if err != nil {
			if grpcTransport != nil {
				grpcTransport.Stop()
			}
			return err
		}
	}

	go hub.run()
	if grpcTransport != nil {
		go func() {
			err := grpcTransport.serve()
			if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				zap.L().Error("scope gRPC server failed", zap.Error(err))
			}
		}()
		zap.L().Info("scope gRPC server started", zap.Stringer("address", grpcTransport.Addr()))
	}
	if websocketTransport != nil {
		go func() {
			err := websocketTransport.serve()
			if err != nil {
				zap.L().Error("scope websocket server failed", zap.Error(err))
			}
		}()
		zap.L().Info("scope websocket server started", zap.Stringer("address", websocketTransport.Addr()))
	}

	s.hub = hub
	s.grpc = grpcTransport
	s.websocket = websocketTransport
	return nil
}

func (s *Server) Stop() {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	if s.hub == nil {
		return
	}

	if s.grpc != nil {
		s.grpc.Stop()
	}
	if s.websocket != nil {
		s.websocket.Stop()
	}
	s.hub.stop()

	s.hub = nil
	s.grpc = nil
	s.websocket = nil
}

// Show sends the given frame to all connected clients. It does nothing if the server is not active.
func (s *Server) Show(frame *Frame) error {
	s.serverLock.Lock()
	hub := s.hub
	s.serverLock.Unlock()
	if hub == nil {
		return nil
	}

	encoded, err := encodeFrame(frame)
	if err != nil {
		return err
	}
	hub.sendFrame(encoded)
	return nil
}
