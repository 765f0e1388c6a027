package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e HookFailed) { got = append(got, e.Event) })

	Emit(b, HookFailed{Event: "entitythink"})
	b.DispatchAll()
	assert.Empty(t, got, "not readable in the emitting tick")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"entitythink"}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1, "delivered once")
}

func TestBus_TypesAreIndependent(t *testing.T) {
	b := NewBus()
	var started, ended int
	Subscribe(b, func(SessionStarted) { started++ })
	Subscribe(b, func(SessionEnded) { ended++ })

	Emit(b, SessionStarted{Level: "start"})
	Emit(b, SessionStarted{Level: "e1m1"})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 2, started)
	assert.Equal(t, 0, ended)
}
