package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/webserver"
)

func registerExportRoutes() {
	webserver.ApiGET("/orders/export", exportOrders)
	webserver.ApiGET("/customers/export", exportCustomers)
}

// exportOrders streams the order book as an xlsx workbook, one row per
// order line so the sheet pivots cleanly.
func exportOrders(c echo.Context) error {
	views, err := svc.Orders.List(c.Request().Context(), webserver.CurrentPrincipal(c))
	if err != nil {
		return respondErr(c, err)
	}

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Order ID", "Customer", "Created At", "Created By", "Product", "Code", "Unit Price", "Quantity", "Line Total", "Order Total"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		xlsx.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, v := range views {
		for _, ln := range v.Lines {
			xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), v.OrderID)
			xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), v.CustomerName)
			xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), v.CreatedAt.Format(time.RFC3339))
			xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), v.CreatedBy)
			xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), ln.ProductName)
			xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), ln.ProductCode)
			xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), ln.UnitPrice.String())
			xlsx.SetCellValue(sheet, fmt.Sprintf("H%d", row), ln.Quantity)
			xlsx.SetCellValue(sheet, fmt.Sprintf("I%d", row), ln.LineTotal.String())
			xlsx.SetCellValue(sheet, fmt.Sprintf("J%d", row), v.TotalAmount.String())
			row++
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}

type customerCSVRow struct {
	ID        int64  `csv:"id"`
	Name      string `csv:"name"`
	Phone     string `csv:"phone"`
	Email     string `csv:"email"`
	CreatedAt string `csv:"created_at"`
}

// exportCustomers streams the active customer directory as CSV.
func exportCustomers(c echo.Context) error {
	rows, err := svc.Customers.List(c.Request().Context(), webserver.CurrentPrincipal(c))
	if err != nil {
		return respondErr(c, err)
	}

	out := make([]customerCSVRow, 0, len(rows))
	for _, cu := range rows {
		out = append(out, customerCSVRow{
			ID:        cu.ID,
			Name:      cu.Name,
			Phone:     cu.Phone,
			Email:     cu.Email,
			CreatedAt: cu.CreatedAt.Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="customers.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&out, c.Response())
}
