package ipc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are limited to ~100 bytes; t.TempDir can be longer.
	dir, err := os.MkdirTemp("", "tb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "ctl.sock")
}

func TestRoundTrip(t *testing.T) {
	path := socketPath(t)

	srv, err := StartServer(path, func(msg ControlMessage) ControlReply {
		switch msg.Cmd {
		case CmdReset:
			return ControlReply{OK: msg.UserID == 42, Message: "reset"}
		default:
			return ControlReply{Message: "unknown command"}
		}
	})
	require.NoError(t, err)
	defer srv.Close()

	reply, err := SendCommand(path, ControlMessage{Cmd: CmdReset, UserID: 42})
	require.NoError(t, err)
	assert.Equal(t, ControlReply{OK: true, Message: "reset"}, reply)

	reply, err = SendCommand(path, ControlMessage{Cmd: "dance"})
	require.NoError(t, err)
	assert.False(t, reply.OK)
}

func TestSendWithoutServer(t *testing.T) {
	_, err := SendCommand(socketPath(t), ControlMessage{Cmd: CmdStatus})
	assert.Error(t, err)
}

func TestCloseRemovesSocket(t *testing.T) {
	path := socketPath(t)
	srv, err := StartServer(path, func(ControlMessage) ControlReply { return ControlReply{OK: true} })
	require.NoError(t, err)

	require.NoError(t, srv.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
