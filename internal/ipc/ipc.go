// Package ipc carries operator commands over a Unix socket.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const (
	DefaultSocketPath = "/tmp/talkbot.sock"

	CmdStatus = "status"
	CmdReset  = "reset"
)

const ioTimeout = 10 * time.Second

type ControlMessage struct {
	Cmd    string `json:"cmd"`
	UserID int64  `json:"user_id,omitempty"`
}

type ControlReply struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type HandlerFunc func(ControlMessage) ControlReply

type Server struct {
	ln   net.Listener
	path string
}

// StartServer listens on path and answers each connection's single message
// with handler's reply.
func StartServer(path string, handler HandlerFunc) (*Server, error) {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	s := &Server{ln: ln, path: path}
	go s.serve(handler)
	return s, nil
}

func (s *Server) serve(handler HandlerFunc) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("Failed to accept control connection", "err", err)
			continue
		}
		go handleConn(conn, handler)
	}
}

func (s *Server) Close() error {
	err := s.ln.Close()
	os.Remove(s.path)
	return err
}

func handleConn(conn net.Conn, handler HandlerFunc) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ioTimeout))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Warn("Bad control message", "err", err)
		return
	}

	log.Debug("Control command", "cmd", msg.Cmd, "user", msg.UserID)

	if err := json.NewEncoder(conn).Encode(handler(msg)); err != nil {
		log.Warn("Failed to write control reply", "err", err)
	}
}

func SendCommand(path string, msg ControlMessage) (ControlReply, error) {
	conn, err := net.DialTimeout("unix", path, ioTimeout)
	if err != nil {
		return ControlReply{}, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ioTimeout))

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return ControlReply{}, fmt.Errorf("send: %w", err)
	}

	var reply ControlReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return ControlReply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
