// Package analysis produces the demonstration "AI findings" for a cardiac
// scan. There is no model and no inference: the findings are a fixed lookup
// table of conditions whose risk values are scaled by a simple age factor.
package analysis

// maxRisk caps every scaled risk and confidence value.
const maxRisk = 0.95

// summaryBaseConfidence is the unscaled confidence of the headline finding.
const summaryBaseConfidence = 0.87

// Condition is one entry of the findings table: a named cardiac condition
// with its base risk and a clinical description.
type Condition struct {
	Name        string  `json:"name"`
	Risk        float64 `json:"risk"`
	Description string  `json:"description"`
}

// StructureStats is a fixed per-structure intensity/volume summary shown in
// the report. The values are static demonstration data.
type StructureStats struct {
	Structure string  `json:"structure"`
	VolumeCm3 float64 `json:"volume_cm3"`
	Min       float64 `json:"min"`
	Median    float64 `json:"median"`
	Max       float64 `json:"max"`
}

// Summary is the headline finding.
type Summary struct {
	Label       string
	Confidence  float64
	Explanation string
}

// Report is the full analysis payload for one request.
type Report struct {
	Summary    Summary
	Diseases   []Condition
	LabelStats []StructureStats
	Preview3D  string
}

// conditionTable holds the base (age-unscaled) findings. Risks are scaled
// per request by the age factor and capped at maxRisk.
var conditionTable = []Condition{
	{
		Name: "Hypertrophic Cardiomyopathy",
		Risk: 0.87,
		Description: "Genetic condition causing abnormal thickening of heart muscle, " +
			"particularly the septum, leading to outflow obstruction and diastolic dysfunction.",
	},
	{
		Name: "Left Ventricular Hypertrophy",
		Risk: 0.82,
		Description: "Abnormal enlargement and thickening of the left ventricle walls, " +
			"often due to hypertension or genetic factors, reducing pump efficiency.",
	},
	{
		Name: "Diastolic Heart Failure",
		Risk: 0.68,
		Description: "Heart failure with preserved ejection fraction (HFpEF) where the " +
			"ventricle cannot relax and fill properly despite normal contraction.",
	},
	{
		Name: "Coronary Artery Disease Risk",
		Risk: 0.62,
		Description: "Risk of reduced blood flow to heart muscle due to increased muscle " +
			"mass and potential microvascular dysfunction.",
	},
	{
		Name: "Atrial Fibrillation Risk",
		Risk: 0.58,
		Description: "Increased risk of irregular heart rhythm due to atrial enlargement " +
			"and electrical instability from myocardial abnormalities.",
	},
	{
		Name: "Sudden Cardiac Death Risk",
		Risk: 0.34,
		Description: "Elevated risk due to potential ventricular arrhythmias from " +
			"myocardial fiber disarray and ischemia.",
	},
}

// structureTable is the static per-structure summary.
var structureTable = []StructureStats{
	{Structure: "Left Ventricle", VolumeCm3: 125.4, Min: 0.0, Median: 85.2, Max: 255.0},
	{Structure: "Right Ventricle", VolumeCm3: 98.7, Min: 0.0, Median: 72.8, Max: 240.0},
	{Structure: "Left Atrium", VolumeCm3: 68.3, Min: 0.0, Median: 64.5, Max: 230.0},
	{Structure: "Right Atrium", VolumeCm3: 62.1, Min: 0.0, Median: 58.9, Max: 225.0},
	{Structure: "Interventricular Septum", VolumeCm3: 52.3, Min: 0.0, Median: 142.8, Max: 255.0},
	{Structure: "Myocardium (Total)", VolumeCm3: 185.6, Min: 0.0, Median: 112.4, Max: 255.0},
	{Structure: "Aorta", VolumeCm3: 45.6, Min: 0.0, Median: 98.3, Max: 250.0},
	{Structure: "Pulmonary Artery", VolumeCm3: 38.2, Min: 0.0, Median: 88.7, Max: 245.0},
}

// preview3D is a placeholder SVG data URI standing in for a real 3D view.
const preview3D = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iNDAwIiBoZWlnaHQ9IjQwMCIgeG1s" +
	"bnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iNDAwIiBoZWlnaHQ9IjQwMCIg" +
	"ZmlsbD0iIzFhMWEyZSIvPjx0ZXh0IHg9IjUwJSIgeT0iNTAlIiBmb250LWZhbWlseT0iQXJpYWwiIGZvbnQt" +
	"c2l6ZT0iMTYiIGZpbGw9IiM0ZWNjYTMiIHRleHQtYW5jaG9yPSJtaWRkbGUiIGR5PSIuM2VtIj4zRCBQcmV2" +
	"aWV3IEdlbmVyYXRlZDwvdGV4dD48L3N2Zz4="

// AgeRiskFactor returns the multiplier applied to all base risks for a
// patient of the given age: ×1.3 above 60, ×1.15 above 50, otherwise ×1.0.
func AgeRiskFactor(age int) float64 {
	switch {
	case age > 60:
		return 1.3
	case age > 50:
		return 1.15
	default:
		return 1.0
	}
}

// Run produces the findings report for a patient of the given age. It is a
// pure function over the static tables.
func Run(age int) *Report {
	factor := AgeRiskFactor(age)

	diseases := make([]Condition, len(conditionTable))
	for i, c := range conditionTable {
		c.Risk = capRisk(c.Risk * factor)
		diseases[i] = c
	}

	return &Report{
		Summary: Summary{
			Label:      "Hypertrophic Cardiomyopathy Detected",
			Confidence: capRisk(summaryBaseConfidence * factor),
			Explanation: "AI analysis detected morphological changes in the left ventricular wall, " +
				"including increased thickness and altered chamber geometry. " +
				"These findings are consistent with hypertrophic cardiomyopathy patterns.",
		},
		Diseases:   diseases,
		LabelStats: structureTable,
		Preview3D:  preview3D,
	}
}

func capRisk(r float64) float64 {
	if r > maxRisk {
		return maxRisk
	}
	return r
}
