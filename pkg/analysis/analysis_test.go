package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeRiskFactor(t *testing.T) {
	cases := []struct {
		age  int
		want float64
	}{
		{30, 1.0},
		{50, 1.0},
		{51, 1.15},
		{60, 1.15},
		{61, 1.3},
		{85, 1.3},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, AgeRiskFactor(tc.age), "age %d", tc.age)
	}
}

func TestRunYoungPatientKeepsBaseRisks(t *testing.T) {
	report := Run(40)
	require.Len(t, report.Diseases, 6)

	assert.Equal(t, "Hypertrophic Cardiomyopathy", report.Diseases[0].Name)
	assert.InDelta(t, 0.87, report.Diseases[0].Risk, 1e-12)
	assert.InDelta(t, 0.34, report.Diseases[5].Risk, 1e-12)
	assert.InDelta(t, 0.87, report.Summary.Confidence, 1e-12)
}

func TestRunScalesAndCapsRisks(t *testing.T) {
	report := Run(70)

	// 0.87 × 1.3 and 0.82 × 1.3 both exceed the cap.
	assert.Equal(t, 0.95, report.Diseases[0].Risk)
	assert.Equal(t, 0.95, report.Diseases[1].Risk)
	assert.Equal(t, 0.95, report.Summary.Confidence)

	// Lower base risks scale without hitting the cap.
	assert.InDelta(t, 0.68*1.3, report.Diseases[2].Risk, 1e-12)
	assert.InDelta(t, 0.34*1.3, report.Diseases[5].Risk, 1e-12)

	for _, d := range report.Diseases {
		assert.LessOrEqual(t, d.Risk, 0.95, "condition %s", d.Name)
	}
}

func TestRunMiddleAgedScaling(t *testing.T) {
	report := Run(55)

	// 0.87 × 1.15 = 1.0005 exceeds the cap for both the headline finding
	// and the top condition.
	assert.Equal(t, 0.95, report.Diseases[0].Risk)
	assert.Equal(t, 0.95, report.Summary.Confidence)
	assert.InDelta(t, 0.82*1.15, report.Diseases[1].Risk, 1e-12)
	assert.InDelta(t, 0.34*1.15, report.Diseases[5].Risk, 1e-12)
}

func TestRunStaticContent(t *testing.T) {
	report := Run(45)

	assert.Equal(t, "Hypertrophic Cardiomyopathy Detected", report.Summary.Label)
	assert.Contains(t, report.Summary.Explanation, "left ventricular wall")

	require.Len(t, report.LabelStats, 8)
	assert.Equal(t, "Left Ventricle", report.LabelStats[0].Structure)
	assert.Equal(t, 125.4, report.LabelStats[0].VolumeCm3)
	assert.Equal(t, "Pulmonary Artery", report.LabelStats[7].Structure)

	assert.True(t, strings.HasPrefix(report.Preview3D, "data:image/svg+xml;base64,"))
}

func TestRunDoesNotMutateBaseTable(t *testing.T) {
	Run(70)
	report := Run(40)

	// A second young-patient run must still see unscaled base risks.
	assert.InDelta(t, 0.87, report.Diseases[0].Risk, 1e-12)
}
