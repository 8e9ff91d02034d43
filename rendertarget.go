package splice

import (
	"image"
	"math"
	"sync"
)

// --- Pixel buffer pool ---

// bufferPool manages reusable RGBA buffers keyed by power-of-two dimensions.
// Acquire returns a view of exactly the requested size over a backing array
// of the rounded-up size class. After warmup, Acquire/Release are zero-alloc.
type bufferPool struct {
	mu      sync.Mutex
	buckets map[uint64][][]uint8
	// live counts buffers handed out and not yet released.
	live int
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared w×h buffer whose origin is (0, 0).
func (p *bufferPool) Acquire(w, h int) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	p.mu.Lock()
	p.live++
	var pix []uint8
	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			pix = stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
		}
	}
	p.mu.Unlock()

	if pix == nil {
		pix = make([]uint8, pw*ph*4)
	} else {
		clear(pix[:h*pw*4])
	}
	return &image.RGBA{Pix: pix, Stride: pw * 4, Rect: image.Rect(0, 0, w, h)}
}

// Release returns a buffer obtained from Acquire to the pool. The pixels are
// cleared on next Acquire, not here.
func (p *bufferPool) Release(img *image.RGBA) {
	if img == nil || img.Stride == 0 {
		return
	}
	pw := img.Stride / 4
	ph := cap(img.Pix) / img.Stride
	if pw != nextPowerOfTwo(pw) || ph != nextPowerOfTwo(ph) {
		// Not one of ours.
		return
	}
	key := poolKey(pw, ph)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buckets == nil {
		p.buckets = make(map[uint64][][]uint8)
	}
	p.buckets[key] = append(p.buckets[key], img.Pix[:cap(img.Pix)])
	p.live--
}

// Live returns the number of buffers currently checked out.
func (p *bufferPool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Drain drops every pooled buffer so the memory can be collected.
func (p *bufferPool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets = nil
}

// pooled returns the number of idle buffers held by the pool.
func (p *bufferPool) pooled() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.buckets {
		n += len(s)
	}
	return n
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	// Use float64 log2 then ceil, convert back.
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
