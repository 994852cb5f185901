package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
)

// HostInfo describes the machine doing the rendering
type HostInfo struct {
	CPU           string
	LogicalCores  int
	PhysicalCores int
	ClockGHz      float64
	TotalRAMGB    float64
}

func hostInfo() (HostInfo, error) {
	info := HostInfo{LogicalCores: runtime.NumCPU()}

	cpuInfo, err := cpu.Info()
	if err != nil {
		return info, err
	}
	if len(cpuInfo) > 0 {
		info.CPU = cpuInfo[0].ModelName
		info.ClockGHz = cpuInfo[0].Mhz / 1000
	}
	if physical, err := cpu.Counts(false); err == nil {
		info.PhysicalCores = physical
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return info, err
	}
	info.TotalRAMGB = float64(memInfo.Total) / (1 << 30)
	return info, nil
}

func displayHostInfo() {
	info, err := hostInfo()
	if err != nil {
		logger.Warningf("could not read host info: %v", err)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"CPU", "Cores", "Clock", "RAM"})
	table.Append([]string{
		info.CPU,
		fmt.Sprintf("%d logical / %d physical", info.LogicalCores, info.PhysicalCores),
		fmt.Sprintf("%.2f GHz", info.ClockGHz),
		fmt.Sprintf("%.1f GB", info.TotalRAMGB),
	})
	table.Render()
	logger.Infof("host\n%s", buf.String())
}

// formatTimerReport renders the per-phase timing table
func formatTimerReport(report renderer.TimerReport) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Timer", "Calls", "% of run", "Total", "Per call"})
	for _, row := range report.Rows {
		table.Append([]string{
			row.Name,
			fmt.Sprintf("%d", row.Calls),
			fmt.Sprintf("%02.1f %%", row.Percent),
			row.Total.String(),
			row.PerCall.String(),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d frames", report.Frames),
		fmt.Sprintf("%.1f Hz", report.Hz),
		fmt.Sprintf("%.2f ms", report.MsPerFrame),
		report.Elapsed.String(),
		"",
	})
	table.Render()
	return buf.String()
}

func displayTimerStats(report renderer.TimerReport) {
	logger.Noticef("timer statistics\n%s", formatTimerReport(report))
}

// formatRenderStats renders the per-pixel sample distribution table
func formatRenderStats(stats renderer.RenderStats, scheduler *renderer.AdaptiveScheduler) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Pixels", "Samples", "Avg spp", "Min spp", "Max spp", "Budget", "Sweeps"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.TotalPixels),
		fmt.Sprintf("%d", stats.TotalSamples),
		fmt.Sprintf("%.2f", stats.AverageSamples),
		fmt.Sprintf("%d", stats.MinSamples),
		fmt.Sprintf("%d", stats.MaxSamplesUsed),
		fmt.Sprintf("%d", scheduler.Budget()),
		fmt.Sprintf("%d", scheduler.Sweeps()),
	})
	table.Render()
	return buf.String()
}

func displayRenderStats(r *renderer.ProgressiveRenderer) {
	logger.Noticef("render statistics\n%s", formatRenderStats(r.Stats(), r.Scheduler()))
}
