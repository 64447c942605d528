package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/openretail/shopd/internal/authz"
	"github.com/openretail/shopd/internal/webserver"
	"github.com/openretail/shopd/pkg/metrics"
)

func registerStatsRoutes() {
	webserver.ApiGET("/stats/sales", salesStats)
	webserver.ApiGET("/stats/system", systemStats)
}

type salesSummary struct {
	Orders int     `json:"orders"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// salesStats summarizes order totals inside the requested window.
func salesStats(c echo.Context) error {
	from, to, err := orderWindow(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
	}
	who := webserver.CurrentPrincipal(c)
	views, err := svc.Orders.List(c.Request().Context(), who)
	if err != nil {
		return respondErr(c, err)
	}
	views = filterWindow(views, from, to)

	totals := make(stats.Float64Data, 0, len(views))
	for _, v := range views {
		f, _ := v.TotalAmount.Float64()
		totals = append(totals, f)
	}
	summary := salesSummary{Orders: len(views)}
	if len(totals) > 0 {
		summary.Total, _ = totals.Sum()
		summary.Mean, _ = totals.Mean()
		summary.Median, _ = totals.Median()
		summary.P90, _ = totals.Percentile(90)
		summary.Max, _ = totals.Max()
	}
	return ok(c, summary)
}

type systemSnapshot struct {
	Time          time.Time `json:"time"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemPercent    float64   `json:"mem_percent"`
	MemUsedMB     uint64    `json:"mem_used_mb"`
	OrdersCreated float64   `json:"orders_created"`
	OrdersDeleted float64   `json:"orders_deleted"`
}

// systemStats reports a live host snapshot plus the order counters. Admin
// only; it exposes process internals.
func systemStats(c echo.Context) error {
	who := webserver.CurrentPrincipal(c)
	if !authz.IsAdmin(who) {
		return respondErr(c, authz.EnsureCanRead(who, authz.ModuleUsers))
	}

	snap := systemSnapshot{Time: time.Now()}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemPercent = vm.UsedPercent
		snap.MemUsedMB = vm.Used / 1024 / 1024
	}
	snap.OrdersCreated = metrics.CounterValue("orders_created")
	snap.OrdersDeleted = metrics.CounterValue("orders_deleted")
	return ok(c, snap)
}
