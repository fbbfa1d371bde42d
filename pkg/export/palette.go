package export

import (
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// Palette assigns a stable colour to each subject name. It is safe for concurrent use and meant to
// be shared by injection.
type Palette struct {
	mu     sync.RWMutex
	colors map[string]string
}

// NewPalette builds an empty palette.
func NewPalette() *Palette {
	return &Palette{colors: make(map[string]string)}
}

// Color returns the RRGGBB colour for subject, generating and memoising it on first use.
func (p *Palette) Color(subject string) string {
	p.mu.RLock()
	c, ok := p.colors[subject]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.colors[subject]; ok {
		return c
	}
	c = subjectColor(subject)
	p.colors[subject] = c
	return c
}

// Len returns the number of memoised subjects.
func (p *Palette) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.colors)
}

// subjectColor derives a mid-dark HSL colour from the subject name hash.
func subjectColor(subject string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	sum := h.Sum32()

	hue := float64(sum % 360)
	saturation := 0.55 + float64(sum>>9%25)/100
	lightness := 0.35 + float64(sum>>17%20)/100

	r, g, b := hslToRGB(hue, saturation, lightness)
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}

func hslToRGB(h, s, l float64) (int, int, int) {
	a := s * math.Min(l, 1-l)
	f := func(n float64) int {
		k := math.Mod(n+h/30, 12)
		v := l - a*math.Max(math.Min(math.Min(k-3, 9-k), 1), -1)
		return int(math.Round(v * 255))
	}
	return f(0), f(8), f(4)
}

// ContrastRGB returns white for dark backgrounds and black for light ones.
func ContrastRGB(r, g, b int) (int, int, int) {
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance < 0.5 {
		return 255, 255, 255
	}
	return 0, 0, 0
}
