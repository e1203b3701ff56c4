package physics

// bounce handles one axis of a wall collision: a coordinate outside
// [r, limit-r] reverses and damps the velocity component, then the
// coordinate is clamped into the interval whether or not it bounced.
func bounce(pos, vel *float64, r, limit, restitution float64) bool {
	hit := *pos < r || *pos > limit-r
	if hit {
		*vel *= -restitution
	}
	*pos = clamp(*pos, r, limit-r)
	return hit
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// collide applies the wall response to every body and returns the number
// of axis bounces.
func (w *World) collide() int {
	bounces := 0
	for i := range w.bodies {
		b := &w.bodies[i]
		if bounce(&b.Pos.X, &b.Vel.X, b.radius, w.params.Width, w.params.Restitution) {
			bounces++
		}
		if bounce(&b.Pos.Y, &b.Vel.Y, b.radius, w.params.Height, w.params.Restitution) {
			bounces++
		}
	}
	return bounces
}
