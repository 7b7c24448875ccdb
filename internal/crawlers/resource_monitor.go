package crawlers

import (
	"fmt"
	"sync"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryPressure 内存压力等级
type MemoryPressure string

const (
	PressureNormal    MemoryPressure = "normal"
	PressureWarning   MemoryPressure = "warning"
	PressureCritical  MemoryPressure = "critical"
	PressureEmergency MemoryPressure = "emergency"
)

const (
	defaultEmergencyMB = 200
	sampleCacheTTL     = time.Second
)

// MemoryStatus 一次采样结果
type MemoryStatus struct {
	TotalMemory     uint64         // 系统总内存(字节)
	AvailableMemory int64          // 扣除安全保留后的可用内存(字节)
	CPUPercent      float64        // 系统CPU使用率
	Pressure        MemoryPressure // 压力等级
}

// memorySampler 返回系统总内存和可用内存
type memorySampler func() (total, available uint64, err error)

func systemMemory() (uint64, uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return vm.Total, vm.Available, nil
}

// ResourceMonitor 在每次渲染前检查内存,必要时让渲染器回收浏览器
type ResourceMonitor struct {
	safetyReserve int64 // 字节
	emergencyMB   int64
	sample        memorySampler

	mu         sync.Mutex
	last       MemoryStatus
	lastSample time.Time
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(config models.ResourceConfig) *ResourceMonitor {
	emergency := int64(config.EmergencyAvailableMemory)
	if emergency <= 0 {
		emergency = defaultEmergencyMB
	}

	rm := &ResourceMonitor{
		safetyReserve: int64(config.SafetyReserveMemory) * 1024 * 1024,
		emergencyMB:   emergency,
		sample:        systemMemory,
	}

	if total, _, err := rm.sample(); err != nil {
		utils.Warnf("获取系统内存失败: %v", err)
	} else {
		utils.Debugf("系统总内存: %s", utils.FormatBytes(total))
	}
	return rm
}

// Status 返回内存状态,一秒内重复调用使用缓存
func (rm *ResourceMonitor) Status() MemoryStatus {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if !rm.lastSample.IsZero() && time.Since(rm.lastSample) < sampleCacheTTL {
		return rm.last
	}

	total, available, err := rm.sample()
	if err != nil {
		utils.Warnf("采样系统内存失败: %v", err)
		return MemoryStatus{Pressure: PressureNormal}
	}

	status := MemoryStatus{
		TotalMemory:     total,
		AvailableMemory: int64(available) - rm.safetyReserve,
	}
	status.Pressure = rm.classify(status.AvailableMemory)

	// interval为0时与上一次调用比较,不会阻塞
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}

	rm.last = status
	rm.lastSample = time.Now()
	return status
}

// classify 紧急 < E, 严重 < 1.5E, 警告 < 2.5E (E为紧急阈值MB)
func (rm *ResourceMonitor) classify(available int64) MemoryPressure {
	availableMB := available / (1024 * 1024)
	switch {
	case availableMB < rm.emergencyMB:
		return PressureEmergency
	case availableMB < rm.emergencyMB*3/2:
		return PressureCritical
	case availableMB < rm.emergencyMB*5/2:
		return PressureWarning
	default:
		return PressureNormal
	}
}

// ShouldRecycleBrowser 紧急状态下返回true和原因
func (rm *ResourceMonitor) ShouldRecycleBrowser() (bool, string) {
	status := rm.Status()
	availableMB := status.AvailableMemory / (1024 * 1024)

	switch status.Pressure {
	case PressureEmergency:
		return true, fmt.Sprintf("内存紧急状态(当前%dMB),回收浏览器", availableMB)
	case PressureCritical:
		utils.Warnf("内存严重不足(当前%dMB, CPU %.1f%%)", availableMB, status.CPUPercent)
	case PressureWarning:
		utils.Debugf("内存不足(当前%dMB)", availableMB)
	}
	return false, ""
}
