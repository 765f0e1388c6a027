// Package hook holds the event-name keyed handler table, the fail-fast
// dispatcher that fans one host event out to script handlers, and the
// native-override policy.
package hook

// Kind identifies a host lifecycle point.
type Kind int

const (
	EntitySpawn Kind = iota
	EntityTouch
	EntityThink
	EntityBlocked
	StartFrame
	PlayerPreThink
	PlayerPostThink
	ClientKill
	ClientConnect
	PutClientInServer
	SetNewParms
	SetChangeParms
	ServerSpawn
	numKinds
)

// Event describes one hookable point: its script-visible name and how many
// entity arguments handlers receive.
type Event struct {
	Kind  Kind
	Name  string
	Arity int
}

var events = [numKinds]Event{
	{EntitySpawn, "entityspawn", 1},
	{EntityTouch, "entitytouch", 2},
	{EntityThink, "entitythink", 1},
	{EntityBlocked, "entityblocked", 2},
	{StartFrame, "startframe", 0},
	{PlayerPreThink, "playerprethink", 1},
	{PlayerPostThink, "playerpostthink", 1},
	{ClientKill, "clientkill", 1},
	{ClientConnect, "clientconnect", 1},
	{PutClientInServer, "putclientinserver", 1},
	{SetNewParms, "setnewparms", 0},
	{SetChangeParms, "setchangeparms", 1},
	{ServerSpawn, "serverspawn", 0},
}

func (k Kind) Event() Event {
	if k < 0 || k >= numKinds {
		return Event{Kind: k, Name: "unknown"}
	}
	return events[k]
}

func (k Kind) String() string { return k.Event().Name }

// Events returns every known event in declaration order.
func Events() []Event {
	out := make([]Event, len(events))
	copy(out, events[:])
	return out
}

// Names returns the names of every known event, the set a Table is
// initialized with.
func Names() []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}

// ByName looks up a known event.
func ByName(name string) (Event, bool) {
	for _, e := range events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}
