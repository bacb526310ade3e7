package system_healthcheck

type HealthStatusDTO struct {
	Status          string  `json:"status"`
	DiskUsedPercent float64 `json:"diskUsedPercent"`
}
