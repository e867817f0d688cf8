package sensors

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimConfig shapes a simulated channel's waveform.
type SimConfig struct {
	Base      float64 `yaml:"base"`      // Center value
	Amplitude float64 `yaml:"amplitude"` // Sine amplitude around the base
	Jitter    float64 `yaml:"jitter"`    // Uniform noise added to each reading
	PeriodSec float64 `yaml:"period"`    // Waveform period in seconds
}

// SimChannel is a software channel producing a slow sine wave with
// noise. It stands in for a physical sensor when the flight binary runs
// without hardware, the same way the rest of the bench runs simulated
// ingest.
type SimChannel struct {
	name   string
	config SimConfig
	start  time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimChannel(name string, config SimConfig) *SimChannel {
	if config.PeriodSec <= 0 {
		config.PeriodSec = 60
	}
	return &SimChannel{
		name:   name,
		config: config,
		start:  time.Now(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *SimChannel) Name() string { return c.name }

func (c *SimChannel) Read() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.start).Seconds()
	phase := 2 * math.Pi * elapsed / c.config.PeriodSec
	noise := (c.rng.Float64()*2 - 1) * c.config.Jitter

	return c.config.Base + c.config.Amplitude*math.Sin(phase) + noise, nil
}

// SimIMU is a software IMU producing small oscillating rates and an
// approximately 1 g vertical acceleration. Reinit only counts; there is
// no driver to bring back.
type SimIMU struct {
	start time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	reinits int
}

func NewSimIMU() *SimIMU {
	return &SimIMU{
		start: time.Now(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SimIMU) Gyro() (Vec3, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := time.Since(s.start).Seconds()
	return Vec3{
		X: 0.05*math.Sin(t/3) + s.noise(0.002),
		Y: 0.04*math.Cos(t/5) + s.noise(0.002),
		Z: 0.03*math.Sin(t/7) + s.noise(0.002),
	}, nil
}

func (s *SimIMU) Accel() (Vec3, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Vec3{
		X: s.noise(0.05),
		Y: s.noise(0.05),
		Z: 9.81 + s.noise(0.05),
	}, nil
}

func (s *SimIMU) Reinit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reinits++
	return nil
}

// Reinits returns how many times the IMU was reinitialized.
func (s *SimIMU) Reinits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reinits
}

func (s *SimIMU) noise(scale float64) float64 {
	return (s.rng.Float64()*2 - 1) * scale
}
