// Package console is a line-oriented operator shell. Each line is split
// shell-style and turned into a request on "rtc/control/<verb>":
//
//	set_wdt seconds=30
//	repeat every=minute second=15
//	write_ram addr=0x10 data=deadbeef
//
// Arguments are key=value pairs; integers accept 0x/0o/0b prefixes and
// "data" is hex.
package console

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"rtcnode-go/bus"
	"rtcnode-go/errcode"
	"rtcnode-go/x/fmtx"
	"rtcnode-go/x/logx"
	"rtcnode-go/x/strx"
)

const defaultTimeout = 3 * time.Second

// Command is one parsed console line.
type Command struct {
	Verb string
	Args map[string]any
}

// ParseLine tokenises line. Blank lines and # comments yield a zero
// Command and no error.
func ParseLine(line string) (Command, error) {
	toks, err := shlex.Split(line)
	if err != nil {
		return Command{}, errcode.Wrap(errcode.InvalidPayload, "parse", err)
	}
	if len(toks) == 0 {
		return Command{}, nil
	}
	cmd := Command{Verb: toks[0]}
	for _, tok := range toks[1:] {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || k == "" {
			return Command{}, &errcode.E{C: errcode.InvalidParams, Op: cmd.Verb, Msg: "want key=value, got " + tok}
		}
		val, err := parseValue(k, v)
		if err != nil {
			return Command{}, errcode.Wrap(errcode.InvalidParams, cmd.Verb+" "+k, err)
		}
		if cmd.Args == nil {
			cmd.Args = map[string]any{}
		}
		cmd.Args[k] = val
	}
	return cmd, nil
}

func parseValue(key, v string) (any, error) {
	if key == "data" {
		return hex.DecodeString(strx.TrimAnyPrefix(v, "0x", "0X"))
	}
	switch v {
	case "true", "on", "yes":
		return true, nil
	case "false", "off", "no":
		return false, nil
	}
	if n, err := strconv.ParseInt(v, 0, 64); err == nil {
		return n, nil
	}
	return v, nil
}

// Console reads commands from In and writes replies to Out.
type Console struct {
	Conn    *bus.Connection
	In      io.Reader
	Out     io.Writer
	Timeout time.Duration
	Prompt  string

	log logx.Logger
}

func New(conn *bus.Connection, in io.Reader, out io.Writer) *Console {
	return &Console{Conn: conn, In: in, Out: out, Timeout: defaultTimeout, Prompt: "rtc> ", log: logx.New("console")}
}

// Start runs the console on its own goroutine.
func (c *Console) Start(ctx context.Context) {
	go func() {
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Errorf("%v", err)
		}
	}()
}

// Run blocks until In is exhausted, "quit" is entered or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	sc := bufio.NewScanner(c.In)
	c.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			c.prompt()
			continue
		}
		cmd, err := ParseLine(line)
		switch {
		case err != nil:
			c.printf("error: %v", err)
		case cmd.Verb == "":
		case cmd.Verb == "quit" || cmd.Verb == "exit":
			return nil
		case cmd.Verb == "help":
			c.help()
		default:
			c.exec(ctx, cmd)
		}
		c.prompt()
	}
	return sc.Err()
}

func (c *Console) exec(ctx context.Context, cmd Command) {
	var topic bus.Topic
	switch cmd.Verb {
	case "state", "wake":
		c.showRetained(ctx, bus.T("rtc", cmd.Verb))
		return
	case "reset":
		topic = bus.T("system", "reset")
	default:
		topic = bus.T("rtc", "control", cmd.Verb)
	}

	var payload any
	if cmd.Args != nil {
		payload = cmd.Args
	}
	rctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	rep, err := c.Conn.RequestWait(rctx, c.Conn.NewMessage(topic, payload, false))
	if err != nil {
		c.printf("error: %s: %v", cmd.Verb, err)
		return
	}
	c.printf("%s", render(rep.Payload))
}

// showRetained prints the retained message on t, if any.
func (c *Console) showRetained(ctx context.Context, t bus.Topic) {
	sub := c.Conn.Subscribe(t)
	defer c.Conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		c.printf("%s", render(m.Payload))
	case <-time.After(50 * time.Millisecond):
		c.printf("%s: nothing retained", t)
	case <-ctx.Done():
	}
}

func (c *Console) help() {
	c.printf("verbs: set_wdt stop_wdt resume_wdt read_time set_time interrupt_at repeat clear_repeat")
	c.printf("       countdown deep_power_down trickle vbat read_ram write_ram erase_ram wake_reason")
	c.printf("       reset_config read_reg write_reg")
	c.printf("local: state wake reset help quit")
}

func (c *Console) prompt() {
	if c.Prompt != "" {
		_, _ = io.WriteString(c.Out, c.Prompt)
	}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmtx.Fprintf(c.Out, format+"\r\n", args...)
}

func render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
