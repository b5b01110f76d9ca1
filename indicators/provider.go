package indicators

import (
	"errors"
	"fmt"
)

// Spec names one configured indicator instance, e.g. {"fast", EMA, 10}.
type Spec struct {
	Name   string
	Kind   Kind
	Period int
}

// Warmup returns the closes the spec needs before it yields a value. Most
// kinds need a full period; DEMA smooths an EMA series and needs 2*period-1.
func (s Spec) Warmup() int {
	if s.Kind == DEMA {
		return 2*s.Period - 1
	}
	return s.Period
}

// Snapshot maps indicator names to their value at one bar index. Names whose
// indicator has not finished warming up are absent.
type Snapshot map[string]float64

// Provider materializes snapshots for a fixed, ordered indicator set.
type Provider struct {
	specs []Spec
	fns   []Func
}

func NewProvider(specs []Spec) (*Provider, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("indicators: no specs configured")
	}

	seen := make(map[string]struct{}, len(specs))
	fns := make([]Func, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("indicators: spec %d has no name", i)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("indicators: duplicate spec name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.Period <= 0 {
			return nil, fmt.Errorf("indicators: spec %q period must be positive, got %d", s.Name, s.Period)
		}
		fn, err := ForKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("indicators: spec %q: %w", s.Name, err)
		}
		fns[i] = fn
	}
	return &Provider{specs: specs, fns: fns}, nil
}

// MaxPeriod returns the largest configured period.
func (p *Provider) MaxPeriod() int {
	max := 0
	for _, s := range p.specs {
		if s.Period > max {
			max = s.Period
		}
	}
	return max
}

// Warmup returns the longest warmup among the configured indicators, the
// minimum history a caller must supply before every indicator has a value.
func (p *Provider) Warmup() int {
	max := 0
	for _, s := range p.specs {
		if w := s.Warmup(); w > max {
			max = w
		}
	}
	return max
}

// At computes the snapshot for the given close-price prefix. Indicators that
// are still warming up are simply absent from the result; any other compute
// failure aborts.
func (p *Provider) At(closes []float64) (Snapshot, error) {
	snap := make(Snapshot, len(p.specs))
	for i, s := range p.specs {
		v, err := p.fns[i](closes, s.Period)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				continue
			}
			return nil, fmt.Errorf("indicator %q: %w", s.Name, err)
		}
		snap[s.Name] = v
	}
	return snap, nil
}
