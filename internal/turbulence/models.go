package turbulence

// FlightSample is a single set of flight parameters submitted for an estimate
type FlightSample struct {
	Altitude    float64 `json:"altitude"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    float64 `json:"pressure"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
}

// RiskLevel buckets a turbulence probability
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Assessment is the estimate returned for a FlightSample
type Assessment struct {
	Probability float64   `json:"probability"` // 0-100, two decimal places
	RiskLevel   RiskLevel `json:"risk_level"`  // Low, Medium or High
	Suggestion  string    `json:"suggestion"`  // advisory text for RiskLevel
	Next30Min   []float64 `json:"next_30_min"` // ForecastSteps values, each 0-100
}

var suggestions = map[RiskLevel]string{
	RiskLow:    "Conditions are stable. Maintain current flight path.",
	RiskMedium: "Mild turbulence expected. Consider ascending 2000ft for smoother air.",
	RiskHigh:   "Severe turbulence ahead. Immediate altitude change or course correction recommended.",
}

// SuggestionFor returns the fixed advisory for a risk level.
// Unknown levels get the Low advisory.
func SuggestionFor(level RiskLevel) string {
	if s, ok := suggestions[level]; ok {
		return s
	}
	return suggestions[RiskLow]
}

// RiskLevelFor buckets a probability. Lower bounds are exclusive:
// exactly 70 is Medium and exactly 40 is Low.
func RiskLevelFor(probability float64) RiskLevel {
	switch {
	case probability > highThreshold:
		return RiskHigh
	case probability > mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}
