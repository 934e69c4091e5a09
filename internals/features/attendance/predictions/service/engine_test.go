package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	predModel "hajri_backend/internals/features/attendance/predictions/model"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name                                   string
		present, total, remaining              int
		required                               float64
		wantSemester, wantReqPresent, wantMust int
		wantBunk, wantRecovery                 int
		wantStatus                             predModel.Status
	}{
		{"on threshold", 30, 40, 20, 75, 60, 45, 15, 5, 0, predModel.StatusSafe},
		{"comfortable", 36, 40, 20, 75, 60, 45, 9, 11, 0, predModel.StatusSafe},
		{"cannot recover in time", 20, 40, 20, 75, 60, 45, 20, 0, 40, predModel.StatusCritical},
		{"already enough", 45, 50, 10, 75, 60, 45, 0, 10, 0, predModel.StatusSafe},
		{"semester over", 30, 40, 0, 75, 40, 30, 0, 0, 0, predModel.StatusSafe},
		{"negative remaining", 30, 40, -5, 75, 40, 30, 0, 0, 0, predModel.StatusSafe},
		{"low band", 28, 40, 20, 75, 60, 45, 17, 3, 8, predModel.StatusLow},
		{"no classes yet", 0, 0, 30, 75, 30, 23, 23, 7, 0, predModel.StatusSafe},
		{"float safe ceil", 7, 10, 0, 70, 10, 7, 0, 0, 0, predModel.StatusLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Predict(tt.present, tt.total, tt.remaining, tt.required)
			assert.Equal(t, tt.wantSemester, p.SemesterTotal, "semester total")
			assert.Equal(t, tt.wantReqPresent, p.RequiredPresent, "required present")
			assert.Equal(t, tt.wantMust, p.MustAttend, "must attend")
			assert.Equal(t, tt.wantBunk, p.CanBunk, "can bunk")
			assert.Equal(t, tt.wantRecovery, p.Recovery, "recovery")
			assert.Equal(t, tt.wantStatus, p.Status, "status")
		})
	}
}

func TestPredict_ZeroTotalIsFullAttendance(t *testing.T) {
	p := Predict(0, 0, 10, 75)
	assert.Equal(t, 100.0, p.CurrentPercentage)
	assert.Equal(t, 0, p.Recovery)
}

func TestPredict_Bounds(t *testing.T) {
	for present := 0; present <= 40; present++ {
		for remaining := 0; remaining <= 30; remaining += 3 {
			for _, req := range []float64{50, 65, 75, 80, 90} {
				p := Predict(present, 40, remaining, req)
				assert.GreaterOrEqual(t, p.MustAttend, 0)
				assert.GreaterOrEqual(t, p.CanBunk, 0)
				assert.LessOrEqual(t, p.MustAttend, remaining)
				assert.LessOrEqual(t, p.CanBunk, remaining)
				assert.LessOrEqual(t, p.MustAttend+p.CanBunk, remaining,
					"present=%d remaining=%d req=%v", present, remaining, req)
			}
		}
	}
}

func TestPredict_MonotonicInPresent(t *testing.T) {
	for _, req := range []float64{65, 75, 85} {
		prev := Predict(0, 40, 20, req)
		for present := 1; present <= 40; present++ {
			cur := Predict(present, 40, 20, req)
			assert.LessOrEqual(t, cur.MustAttend, prev.MustAttend, "must_attend present=%d", present)
			assert.GreaterOrEqual(t, cur.CanBunk, prev.CanBunk, "can_bunk present=%d", present)
			assert.LessOrEqual(t, cur.Recovery, prev.Recovery, "recovery present=%d", present)
			prev = cur
		}
	}
}

func TestRecoveryClasses(t *testing.T) {
	tests := []struct {
		name           string
		present, total int
		required       float64
		want           int
	}{
		{"half attendance", 20, 40, 75, 40},
		{"above threshold", 36, 40, 75, 0},
		{"exactly threshold", 30, 40, 75, 0},
		{"zero total", 0, 0, 75, 0},
		{"required 100 never recovers", 10, 40, 100, 0},
		{"required 100 full attendance", 40, 40, 100, 0},
		{"required above 100", 10, 40, 120, 0},
		{"fractional", 1, 3, 75, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecoveryClasses(tt.present, tt.total, tt.required))
		})
	}
}

func TestComputePercentage(t *testing.T) {
	assert.Equal(t, 75.0, ComputePercentage(75, 100))
	assert.Equal(t, 75.0, ComputePercentage(30, 40))
	assert.Equal(t, 33.33, ComputePercentage(1, 3))
	assert.Equal(t, 66.67, ComputePercentage(2, 3))
	assert.Equal(t, 0.0, ComputePercentage(0, 0))
	assert.Equal(t, 0.0, ComputePercentage(5, 0))

	for p := 0; p <= 37; p++ {
		v := ComputePercentage(p, 37)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestStatusTiers(t *testing.T) {
	tests := []struct {
		pct   float64
		tier3 predModel.Status
		tier4 predModel.Status
	}{
		{90, predModel.StatusSafe, predModel.StatusSafe},
		{80, predModel.StatusSafe, predModel.StatusSafe},
		{79.99, predModel.StatusSafe, predModel.StatusWarning},
		{75, predModel.StatusSafe, predModel.StatusWarning},
		{74.99, predModel.StatusLow, predModel.StatusDanger},
		{65, predModel.StatusLow, predModel.StatusDanger},
		{64.99, predModel.StatusCritical, predModel.StatusCritical},
		{0, predModel.StatusCritical, predModel.StatusCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier3, StatusTier3(tt.pct), "tier3 %v", tt.pct)
		assert.Equal(t, tt.tier4, StatusTier4(tt.pct), "tier4 %v", tt.pct)
	}
}

func TestPrimaryStatus(t *testing.T) {
	m := predModel.AttendancePredictionModel{
		AttendancePredictionStatus:      predModel.StatusSafe,
		AttendancePredictionStatusTier4: predModel.StatusWarning,
	}
	assert.Equal(t, predModel.StatusSafe, PrimaryStatus(m, 3))
	assert.Equal(t, predModel.StatusWarning, PrimaryStatus(m, 4))
}

func TestStatusForCounts(t *testing.T) {
	assert.Equal(t, predModel.StatusSafe, StatusForCounts(0, 0, 3))
	assert.Equal(t, predModel.StatusSafe, StatusForCounts(0, 0, 4))
	assert.Equal(t, predModel.StatusLow, StatusForCounts(31, 42, 3))
	assert.Equal(t, predModel.StatusDanger, StatusForCounts(31, 42, 4))
	assert.Equal(t, predModel.StatusCritical, StatusForCounts(0, 3, 3))
	assert.Equal(t, StatusFor(ComputePercentage(20, 25), 4), StatusForCounts(20, 25, 4))
}
