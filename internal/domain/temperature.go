package domain

// TemperatureKind is the type attribute of a <temperature> element.
type TemperatureKind int

const (
	TemperatureUnrecognized TemperatureKind = iota
	TemperatureHourly
	TemperatureMaximum
	TemperatureMinimum
	TemperatureApparent
)

var temperatureKindNames = map[string]TemperatureKind{
	"hourly":   TemperatureHourly,
	"maximum":  TemperatureMaximum,
	"minimum":  TemperatureMinimum,
	"apparent": TemperatureApparent,
}

// ParseTemperatureKind maps a type attribute to a kind. Unknown names (for
// example "dew point") yield TemperatureUnrecognized.
func ParseTemperatureKind(name string) TemperatureKind {
	return temperatureKindNames[name]
}

func (k TemperatureKind) String() string {
	switch k {
	case TemperatureHourly:
		return "hourly"
	case TemperatureMaximum:
		return "maximum"
	case TemperatureMinimum:
		return "minimum"
	case TemperatureApparent:
		return "apparent"
	default:
		return "unrecognized"
	}
}

// slot returns the row field a kind writes to.
func (k TemperatureKind) slot(r *Row) **int {
	switch k {
	case TemperatureHourly:
		return &r.TempHourly
	case TemperatureMaximum:
		return &r.TempMax
	case TemperatureMinimum:
		return &r.TempMin
	case TemperatureApparent:
		return &r.TempApparent
	default:
		return nil
	}
}
