package scenario

// Kind names a what-if perturbation.
type Kind string

const (
	KindCertificateExpiry    Kind = "certificate_expiry"
	KindEmergencyMaintenance Kind = "emergency_maintenance"
	KindIncreasedDemand      Kind = "increased_demand"
	KindEquipmentFailure     Kind = "equipment_failure"
	KindWeatherImpact        Kind = "weather_impact"
	KindCustom               Kind = "custom"
)

// Kinds lists the built-in scenario kinds.
var Kinds = []Kind{
	KindCertificateExpiry,
	KindEmergencyMaintenance,
	KindIncreasedDemand,
	KindEquipmentFailure,
	KindWeatherImpact,
	KindCustom,
}

// Known reports whether k is a built-in kind. Unknown kinds run as custom.
func (k Kind) Known() bool {
	for _, b := range Kinds {
		if b == k {
			return true
		}
	}
	return false
}
