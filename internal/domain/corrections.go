package domain

// Correction log keys, one per auto-corrected attribute
const (
	CorrectionTopography = "topography"
	CorrectionHistology  = "histology"
	CorrectionSex        = "sex"
	CorrectionBehavior   = "behavior"
	CorrectionGrade      = "grade"
)

// CorrectionFields lists the correction log keys in reporting order
var CorrectionFields = []string{
	CorrectionTopography,
	CorrectionHistology,
	CorrectionSex,
	CorrectionBehavior,
	CorrectionGrade,
}

// CorrectionEntry describes one field rewritten by the auto-corrector
type CorrectionEntry struct {
	ID             string  `json:"id"`
	Field          string  `json:"field"`
	OriginalValue  string  `json:"original_value"`
	CorrectedValue string  `json:"corrected_value"`
	Confidence     float64 `json:"confidence"`
}

// CorrectionLog groups correction entries by attribute
type CorrectionLog map[string][]CorrectionEntry

// NewCorrectionLog creates a log with an empty list for every attribute
func NewCorrectionLog() CorrectionLog {
	log := make(CorrectionLog, len(CorrectionFields))
	for _, field := range CorrectionFields {
		log[field] = []CorrectionEntry{}
	}
	return log
}

// Add appends an entry under its attribute
func (l CorrectionLog) Add(entry CorrectionEntry) {
	l[entry.Field] = append(l[entry.Field], entry)
}

// Total returns the number of entries across all attributes
func (l CorrectionLog) Total() int {
	total := 0
	for _, entries := range l {
		total += len(entries)
	}
	return total
}
