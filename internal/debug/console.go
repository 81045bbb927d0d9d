package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"

	"github.com/Versifine/stride/internal/input"
	"github.com/Versifine/stride/internal/loop"
	"github.com/Versifine/stride/internal/sim"
)

const defaultMovePulse = 180 * time.Millisecond

// Console drives a scene from raw terminal keystrokes. Keys only write to
// the shared input state; everything that touches the scene runs on the
// frame loop goroutine.
type Console struct {
	scene     *sim.Scene
	input     *input.State
	runner    *loop.Runner
	movePulse time.Duration
	now       func() time.Time

	mu            sync.Mutex
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	turnAxis      float64
	turnUntil     time.Time
	teleport      *mgl64.Vec3
	reset         bool
	status        sim.Sample
	tick          int
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
}

func NewConsole(scene *sim.Scene, state *input.State, tickRate int, maxDelta float64) (*Console, error) {
	if scene == nil {
		return nil, fmt.Errorf("console scene is nil")
	}
	if state == nil {
		return nil, fmt.Errorf("console input state is nil")
	}
	c := &Console{
		scene:     scene,
		input:     state,
		movePulse: defaultMovePulse,
		now:       time.Now,
	}
	runner, err := loop.NewRunner(tickRate, maxDelta, loop.TickFunc(c.beforeTick), scene)
	if err != nil {
		return nil, fmt.Errorf("console frame loop: %w", err)
	}
	runner.AfterTick(c.afterTick)
	c.runner = runner
	c.status = scene.Sample(0)
	return c, nil
}

// Start puts the terminal in raw mode and runs the frame loop until Q,
// Ctrl-C, a read error or ctx cancellation. The frame loop has fully stopped
// before the terminal is restored.
func (c *Console) Start(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wait func()
	defer func() {
		cancel()
		if wait != nil {
			wait()
		}
		_ = term.Restore(fd, oldState)
		fmt.Print("\r\n")
	}()

	fmt.Print("[debug] console started (W/A/S/D pulse, Space jump, arrows turn, X clear, : command, Q quit)\r\n")
	c.renderStatusLine()

	wait = c.startFrameLoop(ctx)

	keys := make(chan byte)
	readErr := make(chan error, 1)
	go readKeys(ctx, bufio.NewReader(os.Stdin), keys, readErr)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return fmt.Errorf("read console input: %w", err)
		case b := <-keys:
			if !c.isCommandMode() && (b == 'q' || b == 'Q' || b == 3) {
				return nil
			}
			c.handleKey(b, keys)
		}
	}
}

// startFrameLoop runs the frame loop on its own goroutine. The returned wait
// blocks until Run has returned, after which no more ticks or status lines
// are produced.
func (c *Console) startFrameLoop(ctx context.Context) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.runner.Run(ctx); err != nil {
			slog.Debug("debug frame loop failed", "error", err)
		}
	}()
	return func() { <-done }
}

// readKeys forwards bytes from r to keys until a read fails or ctx is done.
// A blocked ReadByte is only noticed on the next byte or error.
func readKeys(ctx context.Context, r io.ByteReader, keys chan<- byte, errs chan<- error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
			return
		}
		select {
		case keys <- b:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Console) handleKey(b byte, next <-chan byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulse(&c.forwardUntil, &c.backwardUntil)
	case 's', 'S':
		c.pulse(&c.backwardUntil, &c.forwardUntil)
	case 'a', 'A':
		c.pulse(&c.leftUntil, &c.rightUntil)
	case 'd', 'D':
		c.pulse(&c.rightUntil, &c.leftUntil)
	case ' ':
		c.input.PressJump()
		c.input.ReleaseJump()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		if readByte(next) != '[' {
			return
		}
		switch readByte(next) {
		case 'D': // left
			c.pulseTurn(-1)
		case 'C': // right
			c.pulseTurn(1)
		}
	}
	c.renderStatusLine()
}

func readByte(next <-chan byte) byte {
	select {
	case b := <-next:
		return b
	case <-time.After(50 * time.Millisecond):
		return 0
	}
}

// beforeTick expires key pulses, pushes axes into the input state, turns
// the heading and applies queued commands.
func (c *Console) beforeTick(dt float64) {
	c.mu.Lock()
	now := c.now()
	forward, horizontal := c.axesLocked(now)
	turn := c.turnAxis
	if !c.turnUntil.IsZero() && !now.Before(c.turnUntil) {
		c.turnAxis = 0
		c.turnUntil = time.Time{}
		turn = 0
	}
	teleport := c.teleport
	c.teleport = nil
	reset := c.reset
	c.reset = false
	c.mu.Unlock()

	c.input.SetAxes(horizontal, forward)
	if turn != 0 {
		c.scene.Heading.Turn(turn, c.scene.Controller.Settings().TurnSpeed, dt)
	}
	if teleport != nil {
		c.scene.Teleport(*teleport)
	}
	if reset {
		c.scene.Controller.Reset()
	}
}

func (c *Console) afterTick(float64) {
	c.mu.Lock()
	c.tick++
	c.status = c.scene.Sample(c.tick)
	c.mu.Unlock()
	c.renderStatusLine()
}

func (c *Console) axesLocked(now time.Time) (forward, horizontal float64) {
	active := func(until *time.Time) bool {
		if until.IsZero() {
			return false
		}
		if !now.Before(*until) {
			*until = time.Time{}
			return false
		}
		return true
	}
	if active(&c.forwardUntil) {
		forward++
	}
	if active(&c.backwardUntil) {
		forward--
	}
	if active(&c.rightUntil) {
		horizontal++
	}
	if active(&c.leftUntil) {
		horizontal--
	}
	return forward, horizontal
}

func (c *Console) pulse(until, opposite *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*until = c.now().Add(c.movePulse)
	*opposite = time.Time{}
}

func (c *Console) pulseTurn(axis float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turnAxis = axis
	c.turnUntil = c.now().Add(c.movePulse)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.turnAxis = 0
	c.turnUntil = time.Time{}
	c.mu.Unlock()
	c.input.Clear()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Print("\r\n:")
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Print("\r\n")
		if cmd != "" {
			fmt.Print(c.executeCommand(cmd))
		}
		c.renderStatusLine()
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Print("\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Printf("\r:%s \r:%s", buf, buf)
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Printf("\r:%s", buf)
	}
}

// executeCommand runs a ':' command and returns the text to print.
func (c *Console) executeCommand(cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return ""
	}

	switch parts[0] {
	case "help":
		return helpText
	case "state":
		c.mu.Lock()
		s := c.status
		c.mu.Unlock()
		return fmt.Sprintf("[debug] tick=%d pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) yaw=%.1f ground=%t\r\n",
			s.Tick,
			s.Position.X(), s.Position.Y(), s.Position.Z(),
			s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
			s.Yaw,
			s.Grounded,
		)
	case "tp":
		if len(parts) != 4 {
			return "[debug] usage: :tp <x> <y> <z>\r\n"
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return "[debug] invalid tp args\r\n"
		}
		pos := mgl64.Vec3{x, y, z}
		c.mu.Lock()
		c.teleport = &pos
		c.mu.Unlock()
		return fmt.Sprintf("[debug] teleport queued to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "block":
		if len(parts) != 4 {
			return "[debug] usage: :block <x> <y> <z>\r\n"
		}
		x, err1 := strconv.Atoi(parts[1])
		y, err2 := strconv.Atoi(parts[2])
		z, err3 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return "[debug] invalid block args\r\n"
		}
		return fmt.Sprintf("[debug] block (%d,%d,%d): solid=%t\r\n", x, y, z, c.scene.Grid.IsSolid(x, y, z))
	case "reset":
		c.mu.Lock()
		c.reset = true
		c.mu.Unlock()
		return "[debug] velocity reset queued\r\n"
	default:
		return fmt.Sprintf("[debug] unknown command: %s\r\n", parts[0])
	}
}

const helpText = "[debug] keys:\r\n" +
	"  W/S: pulse forward/back (~180ms)\r\n" +
	"  A/D: pulse strafe left/right (~180ms)\r\n" +
	"  Space: jump\r\n" +
	"  Arrow Left/Right: turn\r\n" +
	"  X: clear all input\r\n" +
	"  Q: quit\r\n" +
	"  : enter command mode\r\n" +
	"[debug] commands:\r\n" +
	"  :state\r\n" +
	"  :tp <x> <y> <z>\r\n" +
	"  :block <x> <y> <z>\r\n" +
	"  :reset\r\n" +
	"  :help\r\n"

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	line := statusLine(c.status)
	padding := ""
	if c.statusWidth > len(line) {
		padding = strings.Repeat(" ", c.statusWidth-len(line))
	}
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()

	fmt.Printf("\r%s%s", line, padding)
}

func statusLine(s sim.Sample) string {
	return fmt.Sprintf(
		"[YAW:%.1f | X:%.2f Y:%.2f Z:%.2f | VY:%.2f ground:%s]",
		s.Yaw,
		s.Position.X(),
		s.Position.Y(),
		s.Position.Z(),
		s.Velocity.Y(),
		boolLabel(s.Grounded),
	)
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
