package scope

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultOutBufferSize = 64

	serviceName     = "lwscope.Scope"
	getFramesMethod = "/" + serviceName + "/GetFrames"
)

// frameService is implemented by the gRPC server to stream frames to a client.
type frameService interface {
	GetFrames(*emptypb.Empty, grpc.ServerStream) error
}

var scopeServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*frameService)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetFrames",
			Handler:       getFramesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "lwscope.proto",
}

func getFramesHandler(srv any, stream grpc.ServerStream) error {
	request := new(emptypb.Empty)
	if err := stream.RecvMsg(request); err != nil {
		return err
	}
	return srv.(frameService).GetFrames(request, stream)
}

// hub distributes incoming frames to all registered streams. A stream that cannot take
// a frame immediately is closed and removed.
type hub struct {
	outBufferSize int
	in            chan *structpb.Struct
	register      chan chan *structpb.Struct
	out           []chan *structpb.Struct
	shutdown      chan struct{}
	done          chan struct{}
}

func newHub(outBufferSize int) *hub {
	return &hub{
		outBufferSize: outBufferSize,
		in:            make(chan *structpb.Struct),
		register:      make(chan chan *structpb.Struct),
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (h *hub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.shutdown:
			for _, out := range h.out {
				close(out)
			}
			h.out = nil
			return
		case out := <-h.register:
			h.out = append(h.out, out)
		case frame := <-h.in:
			h.sendFrameToStreams(frame)
		}
	}
}

func (h *hub) sendFrameToStreams(frame *structpb.Struct) {
	active := h.out[:0]
	for _, out := range h.out {
		select {
		case out <- frame:
			active = append(active, out)
		default:
			zap.L().Debug("closing unresponsive frame stream")
			close(out)
		}
	}
	h.out = active
}

// getFrameStream registers a new stream. It returns false if the hub is already shut down.
func (h *hub) getFrameStream() (chan *structpb.Struct, bool) {
	result := make(chan *structpb.Struct, h.outBufferSize)
	select {
	case h.register <- result:
		return result, true
	case <-h.done:
		return nil, false
	}
}

func (h *hub) sendFrame(frame *structpb.Struct) {
	select {
	case h.in <- frame:
	case <-h.done:
	}
}

func (h *hub) stop() {
	select {
	case <-h.shutdown:
	default:
		close(h.shutdown)
	}
	<-h.done
}

type grpcServer struct {
	address  *net.TCPAddr
	listener net.Listener
	server   *grpc.Server
	hub      *hub
}

func newGRPCServer(address string, hub *hub) (*grpcServer, error) {
	result := &grpcServer{
		hub: hub,
	}

	localAddress, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve address %s: %w", address, err)
	}
	result.address = localAddress

	return result, nil
}

func (s *grpcServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *grpcServer) listen() error {
	if s.server != nil {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.address.String())
	if err != nil {
		return fmt.Errorf("cannot listen on address %s: %w", s.address, err)
	}
	s.listener = listener

	s.server = grpc.NewServer()
	s.server.RegisterService(&scopeServiceDesc, s)
	return nil
}

func (s *grpcServer) serve() error {
	return s.server.Serve(s.listener)
}

func (s *grpcServer) Stop() {
	if s.server == nil {
		return
	}
	s.server.Stop()
	s.listener.Close()
}

func (s *grpcServer) GetFrames(_ *emptypb.Empty, stream grpc.ServerStream) error {
	frames, ok := s.hub.getFrameStream()
	if !ok {
		return nil
	}
	for {
		select {
		case frame, open := <-frames:
			if !open {
				return nil
			}
			if err := stream.SendMsg(frame); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}
