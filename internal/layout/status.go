package layout

import (
	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

type Status string

const (
	StatusNone     Status = ""
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// UsageStatus classifies a utilisation percentage against t.
func UsageStatus(pct float64, t config.Thresholds) Status {
	switch {
	case pct >= t.Critical:
		return StatusCritical
	case pct >= t.Warning:
		return StatusWarning
	}
	return StatusOK
}

// absolute free-capacity limits, in the resource's unit
const (
	memoryFreeWarning = 10
	diskFreeWarning   = 100
)

var freeRules = map[domain.ResourceType]func(free float64) Status{
	domain.CPU: func(free float64) Status {
		if free < 0 {
			return StatusCritical
		}
		return StatusOK
	},
	domain.Memory: func(free float64) Status {
		if free < memoryFreeWarning {
			return StatusWarning
		}
		return StatusOK
	},
	domain.Disk: func(free float64) Status {
		switch {
		case free < 0:
			return StatusCritical
		case free < diskFreeWarning:
			return StatusWarning
		}
		return StatusOK
	},
}

// FreeStatus classifies the free quantity left on a node for rt.
func FreeStatus(free float64, rt domain.ResourceType) Status {
	if rule, ok := freeRules[rt]; ok {
		return rule(free)
	}
	return StatusOK
}

// IsCritical reports whether a node/resource pair is overcommitted or, for
// disk, out of space.
func IsCritical(rt domain.ResourceType, pct, free float64) bool {
	return pct > 100 || (rt == domain.Disk && free < 0)
}

// Utilization is used/capacity in percent, 0 without capacity.
func Utilization(used, capacity float64) float64 {
	if capacity > 0 {
		return used / capacity * 100
	}
	return 0
}
