package control

import (
	"math/rand"

	"github.com/benmeehan/ahu-simulator/internal/models"
)

// Alarm messages, one per fault condition.
const (
	MsgHighTemperature = "High Temperature"
	MsgLowTemperature  = "Low Temperature"
	MsgFanSaturation   = "Fan Saturation"
	MsgInjectedFault   = "Injected Fault"
)

// Alarm is a fault condition detected during a tick, before it is
// stamped with device identity and time.
type Alarm struct {
	Severity models.AlarmSeverity
	Message  string
}

// AlarmEvaluator checks tick state against fault conditions in a fixed
// priority order: temperature deviation, fan saturation, injected
// fault. The first matching condition wins and at most one alarm is
// reported per tick. Absence of a fault is the default outcome; the
// evaluator never fails.
type AlarmEvaluator struct {
	CriticalDeviationC float64 // supply-to-setpoint deviation that raises CRITICAL
	SaturationTicks    int     // consecutive max-speed ticks before WARNING
	FaultProbability   float64 // per-tick injected fault chance, [0, 1]

	rng       *rand.Rand
	saturated int
}

// NewAlarmEvaluator creates an evaluator with its own seeded fault
// source, so injected-fault sequences are reproducible.
func NewAlarmEvaluator(criticalDeviationC float64, saturationTicks int, faultProbability float64, seed int64) *AlarmEvaluator {
	return &AlarmEvaluator{
		CriticalDeviationC: criticalDeviationC,
		SaturationTicks:    saturationTicks,
		FaultProbability:   faultProbability,
		rng:                rand.New(rand.NewSource(seed)),
	}
}

// Evaluate inspects the state produced by the current tick and returns
// the single highest-priority alarm, or nil when no condition matches.
// The saturation counter advances every tick regardless of which
// condition fires.
func (a *AlarmEvaluator) Evaluate(supplyTemp, setpoint, vfdSpeed, maxPercent float64) *Alarm {
	if vfdSpeed >= maxPercent {
		a.saturated++
	} else {
		a.saturated = 0
	}

	deviation := supplyTemp - setpoint
	if deviation > a.CriticalDeviationC {
		return &Alarm{Severity: models.SeverityCritical, Message: MsgHighTemperature}
	}
	if deviation < -a.CriticalDeviationC {
		return &Alarm{Severity: models.SeverityCritical, Message: MsgLowTemperature}
	}

	if a.SaturationTicks > 0 && a.saturated >= a.SaturationTicks {
		return &Alarm{Severity: models.SeverityWarning, Message: MsgFanSaturation}
	}

	if a.FaultProbability > 0 && a.rng.Float64() < a.FaultProbability {
		return &Alarm{Severity: models.SeverityWarning, Message: MsgInjectedFault}
	}

	return nil
}
