package world

import (
	"fmt"
	"math"
)

// Vec3 is a simulation-space vector.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64         { return math.Sqrt(v.Dot(v)) }
func (v Vec3) String() string       { return fmt.Sprintf("'%g %g %g'", v.X, v.Y, v.Z) }

// Entity flag bits (FL_*).
const (
	FlagFly        = 1
	FlagSwim       = 2
	FlagClient     = 8
	FlagInWater    = 16
	FlagMonster    = 32
	FlagGodMode    = 64
	FlagNoTarget   = 128
	FlagItem       = 256
	FlagOnGround   = 512
	FlagPartialGnd = 1024
)

// Solid and movetype values.
const (
	SolidNot      = 0
	SolidTrigger  = 1
	SolidBBox     = 2
	SolidSlideBox = 3
	SolidBSP      = 4

	MoveTypeNone   = 0
	MoveTypeWalk   = 3
	MoveTypeStep   = 4
	MoveTypeFly    = 5
	MoveTypeToss   = 6
	MoveTypePush   = 7
	MoveTypeNoClip = 8
)

const (
	DeadNo    = 0
	DeadDying = 1
	DeadDead  = 2
)

// Ref is a stored entity reference: the slot index and the slot's reuse
// serial when the reference was taken. The zero Ref names the world.
type Ref struct {
	Index  int
	Serial uint32
}

// Edict holds the per-slot entity variables. String fields are stored in the
// host charset; use State.String / State.SetString from script-facing code.
type Edict struct {
	Classname  string
	Model      string
	Netname    string
	Message    string
	Target     string
	Targetname string

	Origin    Vec3
	OldOrigin Vec3
	Velocity  Vec3
	Angles    Vec3
	AVelocity Vec3
	ViewOfs   Vec3
	Mins      Vec3
	Maxs      Vec3
	Size      Vec3
	AbsMin    Vec3
	AbsMax    Vec3

	ModelIndex float64
	Health     float64
	MaxHealth  float64
	Frags      float64
	ArmorValue float64
	NextThink  float64
	Flags      float64
	SpawnFlags float64
	Solid      float64
	MoveType   float64
	TakeDamage float64
	DeadFlag   float64
	Effects    float64
	Frame      float64
	Skin       float64
	Weapon     float64
	Items      float64
	Team       float64

	Enemy        Ref
	Owner        Ref
	GroundEntity Ref
	GoalEntity   Ref
	Chain        Ref

	// FreeTime is the simulation time the slot was last released.
	FreeTime float64
}

// link recomputes the absolute bounding box after origin or size changed.
func (e *Edict) link() {
	e.AbsMin = e.Origin.Add(e.Mins)
	e.AbsMax = e.Origin.Add(e.Maxs)
}
