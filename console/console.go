// Package console is the line-oriented operator interface of the rig. It
// turns typed commands into controller events and prints the events the
// controller posts back, one line each.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/shlex"

	"exerig/active"
	"exerig/core"
	"exerig/motor"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("wrong arguments")
)

// Command is one console verb
type Command struct {
	Name  string
	Usage string
	Help  string
	Run   func(c *Console, args []string) error
}

// Console posts commands to the motor controller and reports replies
type Console struct {
	motors active.Poster
	mu     sync.Mutex // Serializes writes to out
	out    io.Writer
	cmds   map[string]*Command
}

// New creates a console that posts to motors and writes to out
func New(motors active.Poster, out io.Writer) *Console {
	c := &Console{
		motors: motors,
		out:    out,
		cmds:   make(map[string]*Command),
	}
	for _, cmd := range commands {
		c.cmds[cmd.Name] = cmd
	}
	return c
}

var commands = []*Command{
	{
		Name: "calibrate",
		Help: "home both axes and center them",
		Run: func(c *Console, args []string) error {
			if len(args) != 0 {
				return ErrUsage
			}
			return c.post(motor.StartCalibrationSig, nil)
		},
	},
	{
		Name:  "free",
		Usage: "<axis>",
		Help:  "release holding torque and track the encoder",
		Run:   axisCommand(motor.FreeAxisSig),
	},
	{
		Name:  "block",
		Usage: "<axis>",
		Help:  "apply torque and drive a free axis back to zero",
		Run:   axisCommand(motor.BlockAxisSig),
	},
	{
		Name:  "angle",
		Usage: "<axis>",
		Help:  "read the encoder angle of a free axis",
		Run:   axisCommand(motor.RequestAngleSig),
	},
	{
		Name:  "move",
		Usage: "<axis> <degrees>",
		Help:  "move an axis to an absolute angle, 0.1 degree resolution",
		Run: func(c *Console, args []string) error {
			if len(args) != 2 {
				return ErrUsage
			}
			ax, err := parseAxis(args[0])
			if err != nil {
				return err
			}
			tenths, err := parseDegrees(args[1])
			if err != nil {
				return err
			}
			return c.post(motor.MoveToSig, motor.MovePayload{Axis: ax, Tenths: tenths})
		},
	},
	{
		Name: "status",
		Help: "print the controller state",
		Run: func(c *Console, args []string) error {
			return c.post(motor.RequestStatusSig, nil)
		},
	},
	{
		Name: "help",
		Help: "list commands",
		Run: func(c *Console, args []string) error {
			names := make([]string, 0, len(c.cmds))
			for name := range c.cmds {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				cmd := c.cmds[name]
				usage := cmd.Name
				if cmd.Usage != "" {
					usage += " " + cmd.Usage
				}
				c.println(usage + " - " + cmd.Help)
			}
			return nil
		},
	},
}

func axisCommand(sig active.Signal) func(*Console, []string) error {
	return func(c *Console, args []string) error {
		if len(args) != 1 {
			return ErrUsage
		}
		ax, err := parseAxis(args[0])
		if err != nil {
			return err
		}
		return c.post(sig, motor.AxisPayload{Axis: ax})
	}
}

// parseAxis accepts the 1-based axis number or the axis role
func parseAxis(s string) (motor.AxisID, error) {
	switch strings.ToLower(s) {
	case "1", "base":
		return motor.Axis1, nil
	case "2", "ring":
		return motor.Axis2, nil
	}
	return 0, errors.New("bad axis " + strconv.Quote(s))
}

// parseDegrees converts "45", "-15.5" and the like to tenths of a degree
func parseDegrees(s string) (int32, error) {
	deg, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(deg) || math.IsInf(deg, 0) || math.Abs(deg) > 36000 {
		return 0, errors.New("bad angle " + strconv.Quote(s))
	}
	return int32(math.Round(deg * 10)), nil
}

// Execute runs one command line. Blank lines and # comments are ignored.
func (c *Console) Execute(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := c.cmds[strings.ToLower(args[0])]
	if !ok {
		return ErrUnknownCommand
	}
	if err := cmd.Run(c, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) && cmd.Usage != "" {
			return errors.New("usage: " + cmd.Name + " " + cmd.Usage)
		}
		return err
	}
	return nil
}

// Serve executes lines from r until it ends or ctx is done. Command errors
// are printed and do not stop the loop.
func (c *Console) Serve(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Execute(scanner.Text()); err != nil {
			c.println("error: " + err.Error())
		}
	}
	return scanner.Err()
}

// Dispatch implements active.Handler for the events the controller posts
func (c *Console) Dispatch(e active.Event) {
	switch e.Sig {
	case active.InitSig:
		c.println("ready, type help")
	case motor.CalibrationAckSig:
		c.println("ack calibration")
	case motor.MoveAckSig:
		p := e.Data.(motor.AxisPayload)
		c.println("ack move " + p.Axis.String())
	case motor.AngleReplySig:
		p := e.Data.(motor.AnglePayload)
		c.println("angle " + p.Axis.String() + " " + core.FormatTenths(p.Tenths))
	case motor.FaultSig:
		p := e.Data.(motor.FaultPayload)
		line := "fault " + p.Axis.String() + " " + p.Reason.String()
		if p.Err != nil {
			line += ": " + p.Err.Error()
		}
		c.println(line)
	case motor.StatusReplySig:
		c.printStatus(e.Data.(motor.StatusPayload))
	default:
		core.DebugAsync("[CONSOLE] unhandled " + motor.SignalName(e.Sig))
	}
}

func (c *Console) printStatus(s motor.StatusPayload) {
	c.println("state " + s.State.String())
	for i, a := range s.Axes {
		c.println("axis " + motor.AxisID(i).String() +
			" position " + core.FormatTenths(int32(math.Round(a.PositionTenths))) +
			" goal " + core.FormatTenths(a.GoalTenths) +
			" encoder " + core.FormatTenths(a.EncoderAngleTenths) +
			" turns " + core.Itoa(int(a.EncoderTurns)) +
			" raw " + core.Utoa(uint32(a.EncoderLastRead)) +
			" zero " + core.Utoa(uint32(a.EncoderZero)) +
			" homing " + core.Utoa(a.HomingPulses))
	}
}

func (c *Console) post(sig active.Signal, data any) error {
	return c.motors.Post(active.Event{Sig: sig, Data: data})
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, s+"\n")
}
