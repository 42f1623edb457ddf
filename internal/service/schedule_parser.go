package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"irufoodflow/backend/internal/dto"
)

var ErrScheduleNoHeader = errors.New("未找到星期表头（Pazartesi … Pazar）")

// dayNames 按 ISO 星期序号（1=Pazartesi）
var dayNames = [8]string{"", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi", "Pazar"}

// dayAliases 小写星期名 → 序号，兼容无变音符写法
var dayAliases = map[string]int{
	"pazartesi": 1,
	"salı":      2,
	"sali":      2,
	"çarşamba":  3,
	"carsamba":  3,
	"perşembe":  4,
	"persembe":  4,
	"cuma":      5,
	"cumartesi": 6,
	"pazar":     7,
}

var (
	timeRangePattern  = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})\s*[-–]\s*(\d{1,2})[:.](\d{2})`)
	clockPattern      = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	courseCodePattern = regexp.MustCompile(`[A-ZÇĞİÖŞÜ]{2,5}\s?\d{3}`)
	instructorPattern = regexp.MustCompile(`(?:Prof\.\s*Dr\.|Doç\.\s*Dr\.|Dr\.\s*Öğr\.\s*Üyesi|Öğr\.\s*Gör\.|Dr\.|Şef\s)\s*[^\n,;/]*`)
	roomPattern       = regexp.MustCompile(`(?:Derslik|Mutfak|Lab(?:oratuvar)?)\.?\s*[-:]?\s*[A-Z]?-?\d+|\b[A-Z]-?\d{2,3}\b`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// parsedSlot 上传表格中解析出的一个时段
type parsedSlot struct {
	Day        int
	StartTime  string
	EndTime    string
	CourseCode string
	CourseName string
	Room       string
	Instructor string
}

// parseScheduleRows 解析课程表格：首个含星期名的行为表头，首列为时间段
// 无法识别的非空单元格记入 skipped，不中断解析
func parseScheduleRows(rows [][]string) ([]parsedSlot, []dto.SkippedCell, error) {
	headerRow := -1
	dayCols := make(map[int]int)
	for r, row := range rows {
		found := make(map[int]int)
		for c, text := range row {
			if day, ok := dayAliases[strings.ToLowerSpecial(turkishCase, strings.TrimSpace(text))]; ok {
				found[c] = day
			}
		}
		if len(found) >= 2 {
			headerRow, dayCols = r, found
			break
		}
	}
	if headerRow < 0 {
		return nil, nil, ErrScheduleNoHeader
	}

	var slots []parsedSlot
	var skipped []dto.SkippedCell
	for r := headerRow + 1; r < len(rows); r++ {
		row := rows[r]
		if isBlankRow(row) {
			continue
		}
		start, end, ok := parseTimeRange(cellAt(row, 0))
		if !ok {
			for c := range dayCols {
				if text := cellAt(row, c); text != "" {
					skipped = append(skipped, dto.SkippedCell{
						Cell:   cell(colName(c), r+1),
						Text:   text,
						Reason: fmt.Sprintf("无法识别时间段: %s", cellAt(row, 0)),
					})
				}
			}
			continue
		}

		for c := 1; c < len(row); c++ {
			day, isDay := dayCols[c]
			text := cellAt(row, c)
			if !isDay || text == "" {
				continue
			}
			// 同一单元格可能以空行分隔多门课程
			for _, block := range splitBlocks(text) {
				slot := parseSlotText(block)
				if slot.CourseCode == "" && slot.CourseName == "" {
					skipped = append(skipped, dto.SkippedCell{
						Cell:   cell(colName(c), r+1),
						Text:   block,
						Reason: "未识别到课程",
					})
					continue
				}
				slot.Day, slot.StartTime, slot.EndTime = day, start, end
				slots = append(slots, slot)
			}
		}
	}
	return slots, skipped, nil
}

// parseTimeRange 解析 "08:30-09:20" / "08.30 - 09.20"，统一为 HH:MM
func parseTimeRange(s string) (string, string, bool) {
	m := timeRangePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	start := clock(m[1], m[2])
	end := clock(m[3], m[4])
	if !clockPattern.MatchString(start) || !clockPattern.MatchString(end) || start >= end {
		return "", "", false
	}
	return start, end, true
}

func clock(hour, minute string) string {
	h, _ := strconv.Atoi(hour)
	return fmt.Sprintf("%02d:%s", h, minute)
}

func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []string
	for _, b := range strings.Split(text, "\n\n") {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// parseSlotText 依次提取课程代码、教室、教师，剩余文本为课程名
func parseSlotText(text string) parsedSlot {
	var slot parsedSlot
	rest := text

	if loc := courseCodePattern.FindStringIndex(rest); loc != nil {
		slot.CourseCode = spacePattern.ReplaceAllString(rest[loc[0]:loc[1]], "")
		rest = rest[:loc[0]] + " " + rest[loc[1]:]
	}
	// 教室先于教师提取，教师姓名匹配到行尾，同行的教室会被吞掉
	if loc := roomPattern.FindStringIndex(rest); loc != nil {
		slot.Room = strings.TrimSpace(rest[loc[0]:loc[1]])
		rest = rest[:loc[0]] + "\n" + rest[loc[1]:]
	}
	if loc := instructorPattern.FindStringIndex(rest); loc != nil {
		slot.Instructor = strings.TrimSpace(rest[loc[0]:loc[1]])
		rest = rest[:loc[0]] + "\n" + rest[loc[1]:]
	}

	name := spacePattern.ReplaceAllString(rest, " ")
	slot.CourseName = strings.Trim(name, " -,/|")
	return slot
}

// formatSlotText 导出单元格文本，与 parseSlotText 对应
func formatSlotText(code, name, room, instructor string) string {
	var lines []string
	if first := strings.TrimSpace(code + " " + name); first != "" {
		lines = append(lines, first)
	}
	if room != "" {
		lines = append(lines, room)
	}
	if instructor != "" {
		lines = append(lines, instructor)
	}
	return strings.Join(lines, "\n")
}
