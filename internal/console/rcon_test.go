package console

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// startRcon runs a listener plus a stand-in game loop that echoes commands.
func startRcon(t *testing.T) *Listener {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	q := NewQueue(8)
	l, err := Listen("127.0.0.1:0", string(hash), q, zap.NewNop())
	require.NoError(t, err)
	go l.AcceptLoop()

	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(5 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				q.Drain(0, func(line string) string { return "ran " + line + "\n" })
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		l.Shutdown()
	})
	return l
}

func TestRcon_Session(t *testing.T) {
	l := startRcon(t)
	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)

	send := func(line string) string {
		t.Helper()
		require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
		_, err := conn.Write([]byte(line + "\n"))
		require.NoError(t, err)
		reply, err := r.ReadString('\n')
		require.NoError(t, err)
		return reply
	}

	assert.Equal(t, "ran status\n", send("rcon secret status"))
	assert.Equal(t, "ran lua game.time()\n", send("rcon secret lua game.time()"))
	assert.Equal(t, "error: bad rcon password\n", send("rcon wrong status"))
	assert.Contains(t, send("status"), "expected")
	assert.Contains(t, send("rcon secret"), "missing command")
}

func TestListen_RequiresHash(t *testing.T) {
	_, err := Listen("127.0.0.1:0", "", NewQueue(1), zap.NewNop())
	assert.Error(t, err)
	_, err = Listen("127.0.0.1:0", "plaintext", NewQueue(1), zap.NewNop())
	assert.Error(t, err)
}

func TestParseRcon(t *testing.T) {
	tests := []struct {
		line    string
		cmd     string
		pass    string
		wantErr bool
	}{
		{"rcon pw map e1m1", "map e1m1", "pw", false},
		{"rcon  pw  status ", "status", "pw", false},
		{"rcon pw", "", "", true},
		{"status", "", "", true},
		{"rcon", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, pass, err := parseRcon(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.pass, pass)
		})
	}
}

func TestQueue_Full(t *testing.T) {
	q := NewQueue(1)
	_, err := q.Submit("test", "a")
	require.NoError(t, err)
	_, err = q.Submit("test", "b")
	assert.ErrorIs(t, err, ErrQueueFull)

	assert.Equal(t, 1, q.Drain(0, func(line string) string { return line }))
	assert.Equal(t, 0, q.Len())
}
