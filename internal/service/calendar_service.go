package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

var (
	ErrEventNotFound     = errors.New("日历事件不存在")
	ErrEventInvalidColor = errors.New("颜色标签不合法")
	ErrEventInvalidDay   = errors.New("星期取值应为 1-7，周次应在 1-53 之间")
)

// CalendarService 学期日历业务接口
type CalendarService interface {
	Create(ctx context.Context, req *dto.CalendarEventRequest, callerID string) (*dto.CalendarEventResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CalendarEventResponse, error)
	Update(ctx context.Context, id string, req *dto.CalendarEventRequest, callerID string) (*dto.CalendarEventResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *dto.CalendarListRequest) ([]dto.CalendarEventResponse, error)
	Grid(ctx context.Context, req *dto.CalendarTermRequest) (*dto.CalendarGridResponse, error)
	ExportExcel(ctx context.Context, req *dto.CalendarTermRequest) ([]byte, string, error)
	ExportICS(ctx context.Context, req *dto.CalendarICSRequest) ([]byte, string, error)
	ImportICS(ctx context.Context, reader io.Reader, req *dto.CalendarICSRequest, callerID string) (*dto.CalendarImportResponse, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *calendarService) Create(ctx context.Context, req *dto.CalendarEventRequest, callerID string) (*dto.CalendarEventResponse, error) {
	event := &model.CalendarEvent{}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	event.CreatedBy = &callerID

	if err := s.repo.CalendarEvent.Create(ctx, event); err != nil {
		s.logger.Error("创建日历事件失败", zap.Error(err))
		return nil, err
	}
	resp := toCalendarEventResponse(event)
	return &resp, nil
}

func (s *calendarService) getEvent(ctx context.Context, id string) (*model.CalendarEvent, error) {
	event, err := s.repo.CalendarEvent.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询日历事件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return event, nil
}

func (s *calendarService) GetByID(ctx context.Context, id string) (*dto.CalendarEventResponse, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCalendarEventResponse(event)
	return &resp, nil
}

func (s *calendarService) Update(ctx context.Context, id string, req *dto.CalendarEventRequest, callerID string) (*dto.CalendarEventResponse, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	event.UpdatedBy = &callerID

	if err := s.repo.CalendarEvent.Update(ctx, event); err != nil {
		s.logger.Error("更新日历事件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toCalendarEventResponse(event)
	return &resp, nil
}

func (s *calendarService) Delete(ctx context.Context, id string) error {
	if err := s.repo.CalendarEvent.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("删除日历事件失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *calendarService) List(ctx context.Context, req *dto.CalendarListRequest) ([]dto.CalendarEventResponse, error) {
	events, err := s.repo.CalendarEvent.List(ctx, req.Term, req.Year, req.Week)
	if err != nil {
		s.logger.Error("列出日历事件失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CalendarEventResponse, 0, len(events))
	for i := range events {
		result = append(result, toCalendarEventResponse(&events[i]))
	}
	return result, nil
}

// ────────────────────── Grid / Excel ──────────────────────

func (s *calendarService) Grid(ctx context.Context, req *dto.CalendarTermRequest) (*dto.CalendarGridResponse, error) {
	events, err := s.repo.CalendarEvent.List(ctx, req.Term, req.Year, 0)
	if err != nil {
		s.logger.Error("查询日历事件失败", zap.Error(err))
		return nil, err
	}
	return buildCalendarGrid(req.Term, req.Year, events), nil
}

// buildCalendarGrid 周 × 日网格：至少 16 周，列为星期 1-5（有周末事件时追加 6/7）
func buildCalendarGrid(term, year string, events []model.CalendarEvent) *dto.CalendarGridResponse {
	weeks := defaultWeekCount
	days := []int{1, 2, 3, 4, 5}
	weekend := map[int]bool{}
	for _, e := range events {
		if e.WeekNumber > weeks && e.WeekNumber <= model.MaxWeekNumber {
			weeks = e.WeekNumber
		}
		if e.DayOfWeek > 5 {
			weekend[e.DayOfWeek] = true
		}
	}
	for _, d := range []int{6, 7} {
		if weekend[d] {
			days = append(days, d)
		}
	}
	dayIndex := make(map[int]int, len(days))
	for i, d := range days {
		dayIndex[d] = i
	}

	grid := &dto.CalendarGridResponse{Term: term, Year: year, Days: days, Weeks: make([]dto.CalendarGridWeek, weeks)}
	for w := range grid.Weeks {
		grid.Weeks[w] = dto.CalendarGridWeek{WeekNumber: w + 1, Cells: make([][]dto.CalendarEventResponse, len(days))}
		for d := range grid.Weeks[w].Cells {
			grid.Weeks[w].Cells[d] = []dto.CalendarEventResponse{}
		}
	}
	for i := range events {
		e := &events[i]
		col, ok := dayIndex[e.DayOfWeek]
		if !ok || e.WeekNumber < 1 || e.WeekNumber > len(grid.Weeks) {
			continue
		}
		week := &grid.Weeks[e.WeekNumber-1]
		week.Cells[col] = append(week.Cells[col], toCalendarEventResponse(e))
	}
	return grid
}

func (s *calendarService) ExportExcel(ctx context.Context, req *dto.CalendarTermRequest) ([]byte, string, error) {
	grid, err := s.Grid(ctx, req)
	if err != nil {
		return nil, "", err
	}

	w := newSheetWriter("Akademik Takvim")
	widths := []float64{10}
	header := []string{"Hafta"}
	for _, d := range grid.Days {
		widths = append(widths, 30)
		header = append(header, dayNames[d])
	}
	w.widths(widths...)
	w.title(fmt.Sprintf("%s %s Akademik Takvim", req.Year, req.Term), len(header))
	w.header(header...)
	for _, week := range grid.Weeks {
		values := []interface{}{weekLabel(week.WeekNumber)}
		for _, events := range week.Cells {
			texts := make([]string, 0, len(events))
			for _, e := range events {
				texts = append(texts, e.Description)
			}
			values = append(values, strings.Join(texts, "\n"))
		}
		w.writeRow(values...)
	}

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("导出日历失败", zap.Error(err))
		return nil, "", err
	}
	return data, calendarFilename(req.Term, req.Year, "xlsx"), nil
}

// ────────────────────── ICS ──────────────────────

func (s *calendarService) ExportICS(ctx context.Context, req *dto.CalendarICSRequest) ([]byte, string, error) {
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return nil, "", err
	}
	events, err := s.repo.CalendarEvent.List(ctx, req.Term, req.Year, 0)
	if err != nil {
		s.logger.Error("查询日历事件失败", zap.Error(err))
		return nil, "", err
	}
	return buildICS(events, req.Term, req.Year, start), calendarFilename(req.Term, req.Year, "ics"), nil
}

func (s *calendarService) ImportICS(ctx context.Context, reader io.Reader, req *dto.CalendarICSRequest, callerID string) (*dto.CalendarImportResponse, error) {
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	events, skipped, err := parseICSEvents(reader, strings.TrimSpace(req.Term), strings.TrimSpace(req.Year), start)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].CreatedBy = &callerID
	}

	if len(events) > 0 {
		if err := s.repo.CalendarEvent.BatchCreate(ctx, events); err != nil {
			s.logger.Error("导入日历事件失败", zap.Error(err))
			return nil, err
		}
	}
	s.logger.Info("ICS 导入完成",
		zap.String("term", req.Term),
		zap.String("year", req.Year),
		zap.Int("imported", len(events)),
		zap.Int("skipped", skipped),
	)
	return &dto.CalendarImportResponse{Imported: len(events), Skipped: skipped}, nil
}

// ── 辅助函数 ──

func applyEventRequest(event *model.CalendarEvent, req *dto.CalendarEventRequest) error {
	if req.DayOfWeek < 1 || req.DayOfWeek > 7 || req.WeekNumber < 1 || req.WeekNumber > model.MaxWeekNumber {
		return ErrEventInvalidDay
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = model.CalendarColors[0]
	}
	if !model.IsValidColor(color) {
		return ErrEventInvalidColor
	}
	event.Term = strings.TrimSpace(req.Term)
	event.Year = strings.TrimSpace(req.Year)
	event.WeekNumber = req.WeekNumber
	event.DayOfWeek = req.DayOfWeek
	event.Description = strings.TrimSpace(req.Description)
	event.Color = color
	return nil
}

func calendarFilename(term, year, ext string) string {
	name := strings.Join(nonEmpty(year, term), "_")
	return fmt.Sprintf("akademik_takvim_%s.%s", strings.ReplaceAll(name, " ", "_"), ext)
}

func toCalendarEventResponse(e *model.CalendarEvent) dto.CalendarEventResponse {
	return dto.CalendarEventResponse{
		ID:          e.EventID,
		Term:        e.Term,
		Year:        e.Year,
		WeekNumber:  e.WeekNumber,
		DayOfWeek:   e.DayOfWeek,
		Description: e.Description,
		Color:       e.Color,
	}
}
