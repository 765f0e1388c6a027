package console

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ReadLines feeds lines from r into queue and writes each reply to out. It
// returns when r is exhausted or done is closed while waiting for a reply.
func ReadLines(r io.Reader, out io.Writer, queue *Queue, done <-chan struct{}, log *zap.Logger) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), maxLineLen)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		cmd, err := queue.Submit("stdin", line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		select {
		case reply := <-cmd.Reply():
			io.WriteString(out, reply)
		case <-done:
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("stdin read failed", zap.Error(err))
		return err
	}
	return nil
}
