package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType Excel 下载的 Content-Type
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
	ErrImportBadFile      = errors.New("无法解析 Excel 文件")
	ErrImportNoData       = errors.New("Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows  = errors.New("数据行数超过上限")
	ErrImportBadHeader    = errors.New("Excel 表头缺少必要列")
)

// ── 写入 ──

// sheetWriter 单工作表 Excel 构建器
type sheetWriter struct {
	f           *excelize.File
	sheet       string
	row         int
	headerStyle int
	titleStyle  int
}

func newSheetWriter(sheet string) *sheetWriter {
	f := excelize.NewFile()
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	return &sheetWriter{f: f, sheet: sheet, row: 1, headerStyle: headerStyle, titleStyle: titleStyle}
}

// title 写入合并标题行，span 为合并的列数
func (w *sheetWriter) title(text string, span int) {
	if span < 1 {
		span = 1
	}
	first := cell("A", w.row)
	w.f.SetCellValue(w.sheet, first, text)
	w.f.MergeCell(w.sheet, first, cell(colName(span-1), w.row))
	w.f.SetCellStyle(w.sheet, first, first, w.titleStyle)
	w.row++
}

// widths 按顺序设置列宽
func (w *sheetWriter) widths(widths ...float64) {
	for i, width := range widths {
		col := colName(i)
		w.f.SetColWidth(w.sheet, col, col, width)
	}
}

// header 写入表头行
func (w *sheetWriter) header(cols ...string) {
	for i, c := range cols {
		w.f.SetCellValue(w.sheet, cell(colName(i), w.row), c)
	}
	if len(cols) > 0 {
		w.f.SetCellStyle(w.sheet, cell("A", w.row), cell(colName(len(cols)-1), w.row), w.headerStyle)
	}
	w.row++
}

// writeRow 写入一行数据，decimal 转为数值单元格
func (w *sheetWriter) writeRow(values ...interface{}) {
	for i, v := range values {
		switch d := v.(type) {
		case decimal.Decimal:
			v = d.InexactFloat64()
		case *decimal.Decimal:
			if d == nil {
				v = ""
			} else {
				v = d.InexactFloat64()
			}
		}
		w.f.SetCellValue(w.sheet, cell(colName(i), w.row), v)
	}
	w.row++
}

// skip 留空 n 行
func (w *sheetWriter) skip(n int) {
	w.row += n
}

// bytes 输出 xlsx 内容并关闭文件
func (w *sheetWriter) bytes() ([]byte, error) {
	defer w.f.Close()
	buf := new(bytes.Buffer)
	if err := w.f.Write(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}
	return buf.Bytes(), nil
}

// ── 读取 ──

// readFirstSheet 读取首个工作表的所有行
func readFirstSheet(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	return rows, nil
}

// parseHeaderIndex 解析表头（支持灵活列序），返回 key -> 列索引；缺失列为 -1
// aliases 的别名需为小写
func parseHeaderIndex(header []string, aliases map[string][]string) map[string]int {
	idx := make(map[string]int, len(aliases))
	for key := range aliases {
		idx[key] = -1
	}
	for i, h := range header {
		lower := strings.ToLowerSpecial(turkishCase, strings.TrimSpace(h))
		for key, names := range aliases {
			if idx[key] >= 0 {
				continue
			}
			for _, n := range names {
				if lower == n {
					idx[key] = i
				}
			}
		}
	}
	return idx
}

// cellAt 安全读取行中指定列，列缺失返回空串
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDecimalCell 解析数值单元格，兼容逗号小数（150,50）
func parseDecimalCell(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
