package planner

// Rules holds the thresholds used to derive positions and redirections from zones.
type Rules struct {
	PoliceDensity    float64 // police are recommended above this density
	FireDensity      float64 // fire service is added above this density
	SourceDensity    float64 // zones above this density shed crowd
	TargetDensity    float64 // zones below this density can absorb crowd
	TargetsPerSource int
	SafeCapacity     float64 // share of max capacity a source zone is brought down to
	GuidedCrowd      float64 // crowds larger than this get guided transport
	MinutesPerKm     float64
	AltRouteOffset   float64 // degrees the alternative routes bend away from the midpoint
	AltRouteAFactor  float64
	AltRouteBFactor  float64
}

// DefaultRules returns the thresholds used by the dashboard.
func DefaultRules() Rules {
	return Rules{
		PoliceDensity:    60,
		FireDensity:      80,
		SourceDensity:    70,
		TargetDensity:    60,
		TargetsPerSource: 2,
		SafeCapacity:     0.8,
		GuidedCrowd:      500,
		MinutesPerKm:     2,
		AltRouteOffset:   0.002,
		AltRouteAFactor:  2.3,
		AltRouteBFactor:  2.5,
	}
}

// withDefaults fills zero fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.PoliceDensity == 0 {
		r.PoliceDensity = d.PoliceDensity
	}
	if r.FireDensity == 0 {
		r.FireDensity = d.FireDensity
	}
	if r.SourceDensity == 0 {
		r.SourceDensity = d.SourceDensity
	}
	if r.TargetDensity == 0 {
		r.TargetDensity = d.TargetDensity
	}
	if r.TargetsPerSource <= 0 {
		r.TargetsPerSource = d.TargetsPerSource
	}
	if r.SafeCapacity == 0 {
		r.SafeCapacity = d.SafeCapacity
	}
	if r.GuidedCrowd == 0 {
		r.GuidedCrowd = d.GuidedCrowd
	}
	if r.MinutesPerKm == 0 {
		r.MinutesPerKm = d.MinutesPerKm
	}
	if r.AltRouteOffset == 0 {
		r.AltRouteOffset = d.AltRouteOffset
	}
	if r.AltRouteAFactor == 0 {
		r.AltRouteAFactor = d.AltRouteAFactor
	}
	if r.AltRouteBFactor == 0 {
		r.AltRouteBFactor = d.AltRouteBFactor
	}
	return r
}

// Planner derives recommendations and redirection plans from zones.
// It holds no state besides its rules and is safe for concurrent use.
type Planner struct {
	rules Rules
}

func New(rules Rules) *Planner {
	return &Planner{rules: rules.withDefaults()}
}

func (p *Planner) Rules() Rules {
	return p.rules
}
