// Package sh is an ishell based shell for talking to L1 controllers.
// Command packages register themselves with AddCmds from init.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	"github.com/robotalks/maqueen.go/pkg/l1/comm"
	env "github.com/robotalks/maqueen.go/pkg/l1/env/connector"
	"github.com/robotalks/maqueen.go/pkg/l1/msgs"
)

// ErrNotConnected is reported by commands needing a controller.
var ErrNotConnected = errors.New("not connected")

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	// Timeout bounds the wait for a reply.
	Timeout time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

// Session is a connection to a controller with the loop running its
// transport.
type Session struct {
	Ref  l1.ControllerRef
	Conn l1.ControllerConn

	cancel context.CancelFunc
}

// Close stops the transport loop.
func (s *Session) Close() {
	s.cancel()
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     comm.DefaultCommandExpiration + 500*time.Millisecond,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func requiring a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info l1.ControllerInfo) string {
	var w strings.Builder
	w.WriteString(info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	if len(info.Meta.Labels) > 0 {
		keys := make([]string, 0, len(info.Meta.Labels))
		for k := range info.Meta.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for n, k := range keys {
			sep := " "
			if n == 0 {
				sep = " ["
			}
			fmt.Fprintf(&w, "%s%s=%s", sep, k, info.Meta.Labels[k])
		}
		w.WriteString("]")
	}
	return w.String()
}

// FormatResult renders a reply as "Type text" or JSON.
func FormatResult(msg fx.Message, asJSON bool) (string, error) {
	sm, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return "", fmt.Errorf("%T is not serializable", msg)
	}
	if asJSON {
		out, err := json.Marshal(sm.Serializable())
		return string(out), err
	}
	if _, ok := msg.(*msgs.CommandOK); ok {
		return "OK", nil
	}
	return fmt.Sprintf("%s %s", reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), sm.Serializable().String()), nil
}

// DoCommand runs a command and prints its result.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	s := ShellFrom(c)
	res, err := s.Do(msg)
	if err == nil {
		var out string
		if out, err = FormatResult(res, s.OutputJSON); err == nil {
			c.Println(out)
			return nil
		}
	}
	c.Err(err)
	return err
}

// Do sends a command and waits for the reply.
func (s *Shell) Do(msg fx.Message) (fx.Message, error) {
	if s.Session == nil {
		return nil, ErrNotConnected
	}
	f := s.Session.Conn.DoCommand(msg)
	timer := time.NewTimer(s.Timeout)
	defer timer.Stop()
	select {
	case res := <-f.ResultChan():
		return res.Msg, res.Err
	case <-timer.C:
		return nil, fmt.Errorf("command timeout: %w", context.DeadlineExceeded)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverControllers discovers controllers accepted by filter.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	infoList, err := connector.Discover(context.Background())
	if err != nil || filter == nil {
		return infoList, err
	}
	items := infoList[:0]
	for _, info := range infoList {
		if filter(info) {
			items = append(items, info)
		}
	}
	return items, nil
}

// SelectController discovers controllers and asks for a choice. It
// returns nil when nothing is found.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, errors.New("more than 1 controllers discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
		if index < 0 {
			return nil, errors.New("nothing selected")
		}
	}
	return &infoList[index], nil
}

// Connect replaces the current session with one to ref.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		cancel()
		return err
	}
	session := &Session{Ref: ref, Conn: conn, cancel: cancel}
	if adder, ok := conn.(fx.LoopAdder); ok {
		loop := fx.NewLoop().Add(adder)
		go loop.Run(ctx)
	}
	s.Disconnect()
	s.Session = session
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
	return nil
}

// Disconnect disconnects current controller.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Close()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell, or evaluates args when given.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			glog.Exitf("connect %q failed: %v", s.Config.Ref.Name(), err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

var (
	// DiscoverCmd discovers controllers.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "[TYPE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverControllers(typeFilter(c.Args))
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if infoList == nil {
					infoList = []l1.ControllerInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE [ID]]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ref, err := s.Resolve(c.Args)
			if err == nil {
				err = s.Connect(ref)
			}
			if err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Resolve turns "TYPE ID" into a ref, or discovers one from "[TYPE]".
func (s *Shell) Resolve(args []string) (l1.ControllerRef, error) {
	if len(args) >= 2 {
		return l1.ControllerRef{Type: args[0], ID: args[1]}, nil
	}
	if len(args) == 1 && strings.Contains(args[0], "/") {
		return l1.ParseControllerRef(args[0])
	}
	info, err := s.SelectController(typeFilter(args))
	if err != nil {
		return l1.ControllerRef{}, err
	}
	if info == nil {
		return l1.ControllerRef{}, errors.New("no controller discovered")
	}
	return info.Ref, nil
}

func typeFilter(args []string) func(l1.ControllerInfo) bool {
	if len(args) == 0 {
		return nil
	}
	return func(info l1.ControllerInfo) bool {
		return info.Ref.Type == args[0]
	}
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
