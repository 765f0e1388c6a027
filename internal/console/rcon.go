package console

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLineLen   = 4096
	replyTimeout = 5 * time.Second
)

var errBadPassword = errors.New("bad rcon password")

// Listener accepts line-based remote console connections. Each line must
// read "rcon <password> <command>"; authenticated commands are queued for
// the game loop and the reply is written back on the same connection.
type Listener struct {
	listener net.Listener
	hash     []byte
	queue    *Queue
	nextID   atomic.Uint64
	log      *zap.Logger
	closeCh  chan struct{}
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[uint64]net.Conn
}

// Listen binds the rcon port. An empty password hash disables remote
// commands entirely; the caller should not start a listener then.
func Listen(bindAddr string, passwordHash string, queue *Queue, log *zap.Logger) (*Listener, error) {
	if passwordHash == "" {
		return nil, fmt.Errorf("rcon: no password hash configured")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("rcon: invalid password hash: %w", err)
	}
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Listener{
		listener: ln,
		hash:     []byte(passwordHash),
		queue:    queue,
		log:      log,
		closeCh:  make(chan struct{}),
		conns:    make(map[uint64]net.Conn),
	}, nil
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (l *Listener) AcceptLoop() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.closeCh:
				return // shutting down
			default:
			}
			l.log.Error("rcon accept failed", zap.Error(err))
			continue
		}
		id := l.nextID.Add(1)
		l.mu.Lock()
		l.conns[id] = conn
		l.mu.Unlock()

		l.wg.Add(1)
		go l.serve(id, conn)
	}
}

// serve reads lines from one connection until it closes.
func (l *Listener) serve(id uint64, conn net.Conn) {
	defer l.wg.Done()
	defer func() {
		l.mu.Lock()
		delete(l.conns, id)
		l.mu.Unlock()
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	log := l.log.With(zap.Uint64("rcon", id), zap.String("ip", remote))
	log.Info("rcon connected")

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 512), maxLineLen)
	w := bufio.NewWriter(conn)
	verified := "" // last password that passed bcrypt on this connection

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		cmd, pass, err := parseRcon(line)
		if err == nil && pass != verified {
			if bcrypt.CompareHashAndPassword(l.hash, []byte(pass)) != nil {
				err = errBadPassword
			} else {
				verified = pass
			}
		}
		var reply string
		if err != nil {
			log.Warn("rcon rejected", zap.Error(err))
			reply = "error: " + err.Error() + "\n"
		} else {
			reply = l.submit(remote, cmd)
		}
		if _, err := w.WriteString(reply); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Debug("rcon read error", zap.Error(err))
	}
	log.Info("rcon disconnected")
}

// submit queues cmd and waits for the game loop to answer.
func (l *Listener) submit(remote, line string) string {
	c, err := l.queue.Submit("rcon "+remote, line)
	if err != nil {
		return "error: " + err.Error() + "\n"
	}
	select {
	case out := <-c.Reply():
		if out == "" {
			return "ok\n"
		}
		return out
	case <-time.After(replyTimeout):
		return "error: game loop did not answer\n"
	case <-l.closeCh:
		return "error: server shutting down\n"
	}
}

func parseRcon(line string) (cmd, pass string, err error) {
	word, rest, ok := strings.Cut(line, " ")
	if !ok || word != "rcon" {
		return "", "", errors.New(`expected "rcon <password> <command>"`)
	}
	pass, cmd, ok = strings.Cut(strings.TrimLeft(rest, " "), " ")
	if !ok || strings.TrimSpace(cmd) == "" {
		return "", "", errors.New("missing command")
	}
	return strings.TrimSpace(cmd), pass, nil
}

// Shutdown stops accepting, closes every connection and waits for the
// readers to exit.
func (l *Listener) Shutdown() {
	close(l.closeCh)
	l.listener.Close()
	l.mu.Lock()
	for _, c := range l.conns {
		c.Close()
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// Addr returns the listener's address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}
