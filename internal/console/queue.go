package console

import "errors"

var ErrQueueFull = errors.New("console queue full")

// Command is one console line waiting for the game loop. The reply channel
// is buffered so Exec never blocks on a slow remote reader.
type Command struct {
	Line   string
	Source string
	reply  chan string
}

// Reply returns the channel the command's output is delivered on.
func (c *Command) Reply() <-chan string { return c.reply }

// Queue hands lines from reader goroutines (rcon connections, stdin) to the
// game loop.
type Queue struct {
	ch chan *Command
}

func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan *Command, size)}
}

// Submit enqueues a line without blocking.
func (q *Queue) Submit(source, line string) (*Command, error) {
	cmd := &Command{Line: line, Source: source, reply: make(chan string, 1)}
	select {
	case q.ch <- cmd:
		return cmd, nil
	default:
		return nil, ErrQueueFull
	}
}

// Drain executes up to limit queued commands with exec (limit <= 0 drains
// everything). Game loop only.
func (q *Queue) Drain(limit int, exec func(line string) string) int {
	n := 0
	for limit <= 0 || n < limit {
		select {
		case cmd := <-q.ch:
			cmd.reply <- exec(cmd.Line)
			n++
		default:
			return n
		}
	}
	return n
}

// Len returns the number of commands waiting.
func (q *Queue) Len() int { return len(q.ch) }
