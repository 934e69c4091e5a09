// file: internals/features/attendance/predictions/service/engine.go
package service

import (
	"math"

	predModel "hajri_backend/internals/features/attendance/predictions/model"
)

// Prediction adalah hasil murni Predict; tidak menyentuh store.
type Prediction struct {
	CurrentPercentage float64
	SemesterTotal     int
	RequiredPresent   int
	MustAttend        int
	CanBunk           int
	Recovery          int
	Status            predModel.Status
	StatusTier4       predModel.Status
}

// toleransi floating point sebelum ceil (0.7*10 = 7.000000000000001)
const ceilEpsilon = 1e-9

func ceilInt(x float64) int {
	return int(math.Ceil(x - ceilEpsilon))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Predict: present/total sejauh ini, remaining = sisa kelas yang diharapkan,
// required = ambang persentase (mis. 75).
// remaining negatif diperlakukan 0.
func Predict(present, total, remaining int, required float64) Prediction {
	if remaining < 0 {
		remaining = 0
	}

	pct := 100.0
	if total > 0 {
		pct = float64(present) / float64(total) * 100
	}

	semesterTotal := total + remaining
	requiredPresent := ceilInt(required * float64(semesterTotal) / 100)

	mustAttend := clamp(requiredPresent-present, 0, remaining)

	allowedAbsences := semesterTotal - requiredPresent
	currentAbsences := total - present
	canBunk := clamp(allowedAbsences-currentAbsences, 0, remaining)

	return Prediction{
		CurrentPercentage: pct,
		SemesterTotal:     semesterTotal,
		RequiredPresent:   requiredPresent,
		MustAttend:        mustAttend,
		CanBunk:           canBunk,
		Recovery:          RecoveryClasses(present, total, required),
		Status:            StatusTier3(pct),
		StatusTier4:       StatusTier4(pct),
	}
}

// RecoveryClasses: berapa kelas berturut-turut harus hadir supaya kembali ke ambang.
// (present + x) / (total + x) = required/100  →  x = (required·total − 100·present) / (100 − required)
// required >= 100 selalu 0 (ambang 100% tidak bisa dipulihkan).
func RecoveryClasses(present, total int, required float64) int {
	if total <= 0 || required >= 100 {
		return 0
	}
	pct := float64(present) / float64(total) * 100
	if pct >= required {
		return 0
	}
	x := (required*float64(total) - 100*float64(present)) / (100 - required)
	if x <= 0 {
		return 0
	}
	return ceilInt(x)
}

// ComputePercentage: dibulatkan 2 desimal; total 0 → 0.
func ComputePercentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(present) / float64(total) * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StatusTier3: SAFE >= 75, LOW >= 65, sisanya CRITICAL. Tidak bergantung pada required.
func StatusTier3(pct float64) predModel.Status {
	switch {
	case pct >= 75:
		return predModel.StatusSafe
	case pct >= 65:
		return predModel.StatusLow
	default:
		return predModel.StatusCritical
	}
}

// StatusTier4: SAFE >= 80, WARNING >= 75, DANGER >= 65, sisanya CRITICAL.
func StatusTier4(pct float64) predModel.Status {
	switch {
	case pct >= 80:
		return predModel.StatusSafe
	case pct >= 75:
		return predModel.StatusWarning
	case pct >= 65:
		return predModel.StatusDanger
	default:
		return predModel.StatusCritical
	}
}

// PrimaryStatus memilih status yang ditampilkan API sesuai STATUS_TIERS.
func PrimaryStatus(m predModel.AttendancePredictionModel, tiers int) predModel.Status {
	if tiers == 4 {
		return m.AttendancePredictionStatusTier4
	}
	return m.AttendancePredictionStatus
}

// StatusForCounts = StatusFor dengan aturan Predict: total 0 dianggap 100% (subject baru).
func StatusForCounts(present, total, tiers int) predModel.Status {
	if total <= 0 {
		return StatusFor(100, tiers)
	}
	return StatusFor(float64(present)/float64(total)*100, tiers)
}

func StatusFor(pct float64, tiers int) predModel.Status {
	if tiers == 4 {
		return StatusTier4(pct)
	}
	return StatusTier3(pct)
}
