package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	ics "github.com/arran4/golang-ical"

	"irufoodflow/backend/internal/model"
)

// ── iCalendar 导入导出 ──────────────────────────────────────
//
// 日历事件以 (周次, 星期) 存储，导出时按学期首周周一换算为真实日期，
// 生成全天事件；导入时反向换算：week = 距首周周一天数 / 7 + 1。
// 颜色标签写入 CATEGORIES。
// ─────────────────────────────────────────────────────────────

// ICSContentType iCalendar 下载的 Content-Type
const ICSContentType = "text/calendar; charset=utf-8"

const dateLayout = "2006-01-02"

var (
	ErrInvalidStartDate = errors.New("start_date 格式应为 YYYY-MM-DD")
	ErrICSBadFile       = errors.New("无法解析 ICS 文件")
)

// parseStartDate 解析学期开始日期，并对齐到该周周一
func parseStartDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidStartDate
	}
	return t.AddDate(0, 0, 1-goWeekdayToISO(t.Weekday())), nil
}

// eventDate (周次, 星期) → 日期
func eventDate(start time.Time, week, day int) time.Time {
	return start.AddDate(0, 0, (week-1)*7+(day-1))
}

// buildICS 将事件生成全天 VEVENT
func buildICS(events []model.CalendarEvent, term, year string, start time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//IRU FoodFlow//Akademik Takvim//TR")
	cal.SetXWRCalName(fmt.Sprintf("Akademik Takvim %s %s", year, term))

	stamp := time.Now().UTC()
	for _, e := range events {
		date := eventDate(start, e.WeekNumber, e.DayOfWeek)
		vevent := cal.AddEvent(fmt.Sprintf("%s@irufoodflow", e.EventID))
		vevent.SetDtStampTime(stamp)
		vevent.SetAllDayStartAt(date)
		vevent.SetAllDayEndAt(date.AddDate(0, 0, 1))
		vevent.SetSummary(e.Description)
		vevent.AddProperty(ics.ComponentPropertyCategories, e.Color)
	}
	return []byte(cal.Serialize())
}

// parseICSEvents 解析 VEVENT 为 (周次, 星期) 事件
// 缺少摘要、摘要超长、早于首周或晚于第 53 周的事件计入 skipped
func parseICSEvents(reader io.Reader, term, year string, start time.Time) ([]model.CalendarEvent, int, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrICSBadFile, err)
	}

	var result []model.CalendarEvent
	skipped := 0
	for _, vevent := range cal.Events() {
		summary := vevent.GetProperty(ics.ComponentPropertySummary)
		if summary == nil || strings.TrimSpace(summary.Value) == "" {
			skipped++
			continue
		}
		date, err := parseICSDate(vevent)
		if err != nil {
			skipped++
			continue
		}
		days := daysBetween(start, date)
		if days < 0 || days/7+1 > model.MaxWeekNumber {
			skipped++
			continue
		}
		description := unescapeICSText(strings.TrimSpace(summary.Value))
		if utf8.RuneCountInString(description) > model.MaxEventDescription {
			skipped++
			continue
		}

		color := model.CalendarColors[0]
		if cat := vevent.GetProperty(ics.ComponentPropertyCategories); cat != nil && model.IsValidColor(strings.TrimSpace(cat.Value)) {
			color = strings.TrimSpace(cat.Value)
		}

		result = append(result, model.CalendarEvent{
			Term:        term,
			Year:        year,
			WeekNumber:  days/7 + 1,
			DayOfWeek:   goWeekdayToISO(date.Weekday()),
			Description: description,
			Color:       color,
		})
	}
	return result, skipped, nil
}

// parseICSDate 读取 DTSTART 的日历日期，支持 DATE、本地时间与 UTC 格式，带 TZID 时按该时区取日期
func parseICSDate(vevent *ics.VEvent) (time.Time, error) {
	prop := vevent.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return time.Time{}, errors.New("缺少 DTSTART")
	}

	loc := time.UTC
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			if tz, err := time.LoadLocation(v[0]); err == nil {
				loc = tz
			}
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405", "20060102"} {
		t, err := time.ParseInLocation(layout, prop.Value, loc)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			t = t.In(istanbul())
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", prop.Value)
}

// daysBetween 两个日历日期之间的天数
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// goWeekdayToISO 将 time.Weekday (0=Sunday) 转为 ISO 8601 (1=Monday … 7=Sunday)
func goWeekdayToISO(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// istanbul UTC 时间的事件按学校所在时区取日期
func istanbul() *time.Location {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		return time.FixedZone("TRT", 3*60*60)
	}
	return loc
}

var icsTextReplacer = strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, "\n", `\N`, "\n", `\\`, `\`)

func unescapeICSText(s string) string {
	return icsTextReplacer.Replace(s)
}
