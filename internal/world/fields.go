package world

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type FieldKind int

const (
	FieldNumber FieldKind = iota
	FieldVector
	FieldString
	FieldEntity
)

func (k FieldKind) String() string {
	switch k {
	case FieldNumber:
		return "number"
	case FieldVector:
		return "vector"
	case FieldString:
		return "string"
	case FieldEntity:
		return "entity"
	}
	return "unknown"
}

// Field describes one script-visible entity variable. Exactly one accessor
// is set, matching Kind. ReadOnly fields change only through builtins
// (setorigin, setsize, setmodel) so the host can relink the entity.
type Field struct {
	Name     string
	Kind     FieldKind
	ReadOnly bool

	num func(*Edict) *float64
	vec func(*Edict) *Vec3
	str func(*Edict) *string
	ent func(*Edict) *Ref
}

func numField(name string, ro bool, f func(*Edict) *float64) *Field {
	return &Field{Name: name, Kind: FieldNumber, ReadOnly: ro, num: f}
}

func vecField(name string, ro bool, f func(*Edict) *Vec3) *Field {
	return &Field{Name: name, Kind: FieldVector, ReadOnly: ro, vec: f}
}

func strField(name string, ro bool, f func(*Edict) *string) *Field {
	return &Field{Name: name, Kind: FieldString, ReadOnly: ro, str: f}
}

func entField(name string, f func(*Edict) *Ref) *Field {
	return &Field{Name: name, Kind: FieldEntity, ent: f}
}

var fields = map[string]*Field{}

func init() {
	for _, f := range []*Field{
		strField("classname", false, func(e *Edict) *string { return &e.Classname }),
		strField("model", true, func(e *Edict) *string { return &e.Model }),
		strField("netname", false, func(e *Edict) *string { return &e.Netname }),
		strField("message", false, func(e *Edict) *string { return &e.Message }),
		strField("target", false, func(e *Edict) *string { return &e.Target }),
		strField("targetname", false, func(e *Edict) *string { return &e.Targetname }),

		vecField("origin", true, func(e *Edict) *Vec3 { return &e.Origin }),
		vecField("oldorigin", true, func(e *Edict) *Vec3 { return &e.OldOrigin }),
		vecField("velocity", false, func(e *Edict) *Vec3 { return &e.Velocity }),
		vecField("angles", false, func(e *Edict) *Vec3 { return &e.Angles }),
		vecField("avelocity", false, func(e *Edict) *Vec3 { return &e.AVelocity }),
		vecField("view_ofs", false, func(e *Edict) *Vec3 { return &e.ViewOfs }),
		vecField("mins", true, func(e *Edict) *Vec3 { return &e.Mins }),
		vecField("maxs", true, func(e *Edict) *Vec3 { return &e.Maxs }),
		vecField("size", true, func(e *Edict) *Vec3 { return &e.Size }),
		vecField("absmin", true, func(e *Edict) *Vec3 { return &e.AbsMin }),
		vecField("absmax", true, func(e *Edict) *Vec3 { return &e.AbsMax }),

		numField("modelindex", true, func(e *Edict) *float64 { return &e.ModelIndex }),
		numField("health", false, func(e *Edict) *float64 { return &e.Health }),
		numField("max_health", false, func(e *Edict) *float64 { return &e.MaxHealth }),
		numField("frags", false, func(e *Edict) *float64 { return &e.Frags }),
		numField("armorvalue", false, func(e *Edict) *float64 { return &e.ArmorValue }),
		numField("nextthink", false, func(e *Edict) *float64 { return &e.NextThink }),
		numField("flags", false, func(e *Edict) *float64 { return &e.Flags }),
		numField("spawnflags", false, func(e *Edict) *float64 { return &e.SpawnFlags }),
		numField("solid", false, func(e *Edict) *float64 { return &e.Solid }),
		numField("movetype", false, func(e *Edict) *float64 { return &e.MoveType }),
		numField("takedamage", false, func(e *Edict) *float64 { return &e.TakeDamage }),
		numField("deadflag", false, func(e *Edict) *float64 { return &e.DeadFlag }),
		numField("effects", false, func(e *Edict) *float64 { return &e.Effects }),
		numField("frame", false, func(e *Edict) *float64 { return &e.Frame }),
		numField("skin", false, func(e *Edict) *float64 { return &e.Skin }),
		numField("weapon", false, func(e *Edict) *float64 { return &e.Weapon }),
		numField("items", false, func(e *Edict) *float64 { return &e.Items }),
		numField("team", false, func(e *Edict) *float64 { return &e.Team }),

		entField("enemy", func(e *Edict) *Ref { return &e.Enemy }),
		entField("owner", func(e *Edict) *Ref { return &e.Owner }),
		entField("groundentity", func(e *Edict) *Ref { return &e.GroundEntity }),
		entField("goalentity", func(e *Edict) *Ref { return &e.GoalEntity }),
		entField("chain", func(e *Edict) *Ref { return &e.Chain }),
	} {
		fields[f.Name] = f
	}
}

// LookupField returns the descriptor for a script-visible field name.
func LookupField(name string) (*Field, bool) {
	f, ok := fields[name]
	return f, ok
}

// FieldNames returns every field name, sorted.
func FieldNames() []string {
	out := make([]string, 0, len(fields))
	for n := range fields {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (f *Field) Number(e *Edict) float64 { return *f.num(e) }
func (f *Field) Vector(e *Edict) Vec3    { return *f.vec(e) }
func (f *Field) Entity(e *Edict) Ref     { return *f.ent(e) }

// Raw returns the host-encoded string value.
func (f *Field) Raw(e *Edict) string { return *f.str(e) }

func (f *Field) SetNumber(e *Edict, v float64) { *f.num(e) = v }
func (f *Field) SetVector(e *Edict, v Vec3)    { *f.vec(e) = v }
func (f *Field) SetEntity(e *Edict, v Ref)     { *f.ent(e) = v }
func (f *Field) SetRaw(e *Edict, v string)     { *f.str(e) = v }

// ParseVec3 parses the "x y z" form used by level files.
func ParseVec3(s string) (Vec3, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Vec3{}, fmt.Errorf("vector %q: want 3 components", s)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("vector %q: %w", s, err)
		}
		out[i] = v
	}
	return Vec3{out[0], out[1], out[2]}, nil
}
