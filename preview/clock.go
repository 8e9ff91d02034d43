package preview

// clock is the preview playhead. Real time is scaled by the playback speed
// so preview and export agree on which timeline time a wall-clock second
// covers.
type clock struct {
	t       float64
	total   float64
	speed   float64
	playing bool
	loop    bool
}

func (c *clock) setTotal(total, speed float64) {
	c.total = total
	c.speed = speed
	if c.speed <= 0 {
		c.speed = 1
	}
	c.t = min(c.t, total)
}

func (c *clock) toggle() {
	if !c.playing && c.t >= c.total {
		c.t = 0
	}
	c.playing = !c.playing
}

func (c *clock) seek(t float64) {
	c.t = max(0, min(t, c.total))
}

// advance moves the playhead by dt wall seconds.
func (c *clock) advance(dt float64) {
	if !c.playing {
		return
	}
	c.t += dt * c.speed
	if c.t <= c.total {
		return
	}
	if c.loop && c.total > 0 {
		for c.t > c.total {
			c.t -= c.total
		}
		return
	}
	c.t = c.total
	c.playing = false
}
