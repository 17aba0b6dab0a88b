package signal

// Series is an append-only sequence of timestamped samples of one signal.
// Timestamps and Values always have the same length.
type Series[T int | float64] struct {
	Timestamps []float64
	Values     []T
}

// Append adds one sample.
func (s *Series[T]) Append(ts float64, v T) {
	s.Timestamps = append(s.Timestamps, ts)
	s.Values = append(s.Values, v)
}

// Len returns the number of samples.
func (s *Series[T]) Len() int {
	return len(s.Values)
}

// Floats returns the values converted to float64.
func (s *Series[T]) Floats() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = float64(v)
	}
	return out
}

// Bundle holds every signal decoded from one capture.
type Bundle struct {
	VehicleSpeed Series[float64] // km/h
	EngineSpeed  Series[float64] // rpm
	Longitude    Series[float64] // degrees
	Latitude     Series[float64] // degrees
	GPSSpeed     Series[float64]
	Heading      Series[float64] // degrees
	Satellites   Series[int]

	// GPSTime values are GPS epoch seconds; its timestamps are capture-local.
	GPSTime Series[float64]
}

// Empty reports whether no signal was decoded at all.
func (b *Bundle) Empty() bool {
	for _, c := range b.Channels() {
		if len(c.Values) > 0 {
			return false
		}
	}
	return true
}

// Channel is a flattened, exporter-friendly view of one series.
type Channel struct {
	Name       string
	Unit       string
	Timestamps []float64
	Values     []float64
}

// Channels returns all eight series in a fixed order.
func (b *Bundle) Channels() []Channel {
	return []Channel{
		{Name: "vehicle_speed", Unit: "km/h", Timestamps: b.VehicleSpeed.Timestamps, Values: b.VehicleSpeed.Values},
		{Name: "engine_speed", Unit: "rpm", Timestamps: b.EngineSpeed.Timestamps, Values: b.EngineSpeed.Values},
		{Name: "longitude", Unit: "deg", Timestamps: b.Longitude.Timestamps, Values: b.Longitude.Values},
		{Name: "latitude", Unit: "deg", Timestamps: b.Latitude.Timestamps, Values: b.Latitude.Values},
		{Name: "gps_speed", Unit: "km/h", Timestamps: b.GPSSpeed.Timestamps, Values: b.GPSSpeed.Values},
		{Name: "heading", Unit: "deg", Timestamps: b.Heading.Timestamps, Values: b.Heading.Values},
		{Name: "satellites", Timestamps: b.Satellites.Timestamps, Values: b.Satellites.Floats()},
		{Name: "gps_time", Unit: "s", Timestamps: b.GPSTime.Timestamps, Values: b.GPSTime.Values},
	}
}
