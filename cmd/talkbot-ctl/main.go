package main

import (
	"fmt"
	"os"
	"strconv"

	cli "github.com/spf13/pflag"

	"talkbot/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: talkbot-ctl [-s socket] status | reset <user_id>")
		cli.PrintDefaults()
	}
	cli.Parse()

	msg, err := parseArgs(cli.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.Usage()
		os.Exit(2)
	}

	reply, err := ipc.SendCommand(*socket, msg)
	if err != nil {
		fmt.Println("talkbot not running:", err)
		os.Exit(1)
	}
	fmt.Println(reply.Message)
	if !reply.OK {
		os.Exit(1)
	}
}

func parseArgs(args []string) (ipc.ControlMessage, error) {
	if len(args) == 0 {
		return ipc.ControlMessage{}, fmt.Errorf("missing command")
	}
	switch args[0] {
	case ipc.CmdStatus:
		return ipc.ControlMessage{Cmd: ipc.CmdStatus}, nil
	case ipc.CmdReset:
		if len(args) != 2 {
			return ipc.ControlMessage{}, fmt.Errorf("reset needs a user id")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return ipc.ControlMessage{}, fmt.Errorf("bad user id %q", args[1])
		}
		return ipc.ControlMessage{Cmd: ipc.CmdReset, UserID: id}, nil
	}
	return ipc.ControlMessage{}, fmt.Errorf("unknown command %q", args[0])
}
