package hook

// Policy decides whether the host skips its built-in behavior for an event.
// Native code always runs first and hooks after it; with OverrideNative set,
// the built-in spawn, touch and think behavior is skipped so scripts fully
// replace per-entity logic. Every other event keeps its native behavior.
type Policy struct {
	OverrideNative bool
}

func (p *Policy) ShouldOverrideNative(k Kind) bool {
	if !p.OverrideNative {
		return false
	}
	switch k {
	case EntitySpawn, EntityTouch, EntityThink:
		return true
	}
	return false
}
