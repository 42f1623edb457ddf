package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

var (
	ErrSlotNotFound    = errors.New("课程时段不存在")
	ErrSlotInvalidTime = errors.New("时间格式应为 HH:MM 且开始早于结束")
	ErrSlotInvalidDay  = errors.New("星期取值应为 1-7")
)

// ScheduleService 课程表业务接口
type ScheduleService interface {
	Create(ctx context.Context, req *dto.ScheduleSlotRequest, callerID string) (*dto.ScheduleSlotResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.ScheduleSlotRequest, callerID string) (*dto.ScheduleSlotResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *dto.ScheduleFilterRequest) ([]dto.ScheduleSlotResponse, error)
	Filters(ctx context.Context) (*dto.ScheduleFiltersResponse, error)
	Grid(ctx context.Context, req *dto.ScheduleFilterRequest) (*dto.ScheduleGridResponse, error)
	Export(ctx context.Context, req *dto.ScheduleFilterRequest) ([]byte, string, error)
	Upload(ctx context.Context, reader io.Reader, req *dto.ScheduleUploadRequest, callerID string) (*dto.ScheduleUploadResponse, error)
}

type scheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.ScheduleSlotRequest, callerID string) (*dto.ScheduleSlotResponse, error) {
	slot := &model.ScheduleSlot{}
	if err := applySlotRequest(slot, req); err != nil {
		return nil, err
	}
	slot.CreatedBy = &callerID

	if err := s.repo.ScheduleSlot.Create(ctx, slot); err != nil {
		s.logger.Error("创建课程时段失败", zap.Error(err))
		return nil, err
	}
	resp := toScheduleSlotResponse(slot)
	return &resp, nil
}

func (s *scheduleService) getSlot(ctx context.Context, id string) (*model.ScheduleSlot, error) {
	slot, err := s.repo.ScheduleSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("查询课程时段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleSlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toScheduleSlotResponse(slot)
	return &resp, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.ScheduleSlotRequest, callerID string) (*dto.ScheduleSlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applySlotRequest(slot, req); err != nil {
		return nil, err
	}
	slot.UpdatedBy = &callerID

	if err := s.repo.ScheduleSlot.Update(ctx, slot); err != nil {
		s.logger.Error("更新课程时段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toScheduleSlotResponse(slot)
	return &resp, nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.ScheduleSlot.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("删除课程时段失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleFilterRequest) ([]dto.ScheduleSlotResponse, error) {
	slots, err := s.repo.ScheduleSlot.List(ctx, toScheduleFilter(req))
	if err != nil {
		s.logger.Error("列出课程时段失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ScheduleSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, toScheduleSlotResponse(&slots[i]))
	}
	return result, nil
}

func (s *scheduleService) Filters(ctx context.Context) (*dto.ScheduleFiltersResponse, error) {
	values, err := s.repo.ScheduleSlot.DistinctValues(ctx)
	if err != nil {
		s.logger.Error("查询课程表筛选项失败", zap.Error(err))
		return nil, err
	}
	return &dto.ScheduleFiltersResponse{
		Programs: values.Programs,
		Classes:  values.Classes,
		Terms:    values.Terms,
		Years:    values.Years,
	}, nil
}

// ────────────────────── Grid / Export ──────────────────────

func (s *scheduleService) Grid(ctx context.Context, req *dto.ScheduleFilterRequest) (*dto.ScheduleGridResponse, error) {
	slots, err := s.repo.ScheduleSlot.List(ctx, toScheduleFilter(req))
	if err != nil {
		s.logger.Error("查询课程时段失败", zap.Error(err))
		return nil, err
	}
	return buildScheduleGrid(slots), nil
}

// buildScheduleGrid 列为星期 1-5（有周末课程时追加 6/7），行为按开始时间排序的去重时间段
func buildScheduleGrid(slots []model.ScheduleSlot) *dto.ScheduleGridResponse {
	days := []int{1, 2, 3, 4, 5}
	for _, weekend := range []int{6, 7} {
		for _, sl := range slots {
			if sl.DayOfWeek == weekend {
				days = append(days, weekend)
				break
			}
		}
	}
	dayIndex := make(map[int]int, len(days))
	for i, d := range days {
		dayIndex[d] = i
	}

	type timeRange struct{ start, end string }
	rowIndex := make(map[timeRange]int)
	var ranges []timeRange
	for _, sl := range slots {
		tr := timeRange{sl.StartTime, sl.EndTime}
		if _, ok := rowIndex[tr]; !ok {
			rowIndex[tr] = 0
			ranges = append(ranges, tr)
		}
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start < ranges[j].start
		}
		return ranges[i].end < ranges[j].end
	})

	grid := &dto.ScheduleGridResponse{Days: days, Rows: make([]dto.ScheduleGridRow, len(ranges))}
	for i, tr := range ranges {
		rowIndex[tr] = i
		grid.Rows[i] = dto.ScheduleGridRow{
			StartTime: tr.start,
			EndTime:   tr.end,
			Cells:     make([][]dto.ScheduleSlotResponse, len(days)),
		}
		for d := range grid.Rows[i].Cells {
			grid.Rows[i].Cells[d] = []dto.ScheduleSlotResponse{}
		}
	}
	for i := range slots {
		sl := &slots[i]
		col, ok := dayIndex[sl.DayOfWeek]
		if !ok {
			continue
		}
		row := rowIndex[timeRange{sl.StartTime, sl.EndTime}]
		grid.Rows[row].Cells[col] = append(grid.Rows[row].Cells[col], toScheduleSlotResponse(sl))
	}
	return grid
}

func (s *scheduleService) Export(ctx context.Context, req *dto.ScheduleFilterRequest) ([]byte, string, error) {
	grid, err := s.Grid(ctx, req)
	if err != nil {
		return nil, "", err
	}

	w := newSheetWriter("Ders Programı")
	widths := []float64{14}
	header := []string{"Saat"}
	for _, d := range grid.Days {
		widths = append(widths, 28)
		header = append(header, dayNames[d])
	}
	w.widths(widths...)
	if title := strings.Join(nonEmpty(req.Program, req.ClassName, req.Term, req.Year), " "); title != "" {
		w.title(title, len(header))
	}
	w.header(header...)

	for _, row := range grid.Rows {
		values := []interface{}{row.StartTime + "-" + row.EndTime}
		for _, slots := range row.Cells {
			texts := make([]string, 0, len(slots))
			for _, sl := range slots {
				texts = append(texts, formatSlotText(sl.CourseCode, sl.CourseName, sl.Room, sl.Instructor))
			}
			values = append(values, strings.Join(texts, "\n\n"))
		}
		w.writeRow(values...)
	}

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("导出课程表失败", zap.Error(err))
		return nil, "", err
	}
	name := strings.Join(nonEmpty(req.Program, req.ClassName, req.Term, req.Year), "_")
	if name == "" {
		name = "tumu"
	}
	return data, fmt.Sprintf("ders_programi_%s.xlsx", strings.ReplaceAll(name, " ", "_")), nil
}

// ────────────────────── Upload ──────────────────────

func (s *scheduleService) Upload(ctx context.Context, reader io.Reader, req *dto.ScheduleUploadRequest, callerID string) (*dto.ScheduleUploadResponse, error) {
	rows, err := readFirstSheet(reader)
	if err != nil {
		return nil, err
	}
	parsed, skipped, err := parseScheduleRows(rows)
	if err != nil {
		return nil, err
	}

	filter := &repository.ScheduleFilter{
		Program:   strings.TrimSpace(req.Program),
		ClassName: strings.TrimSpace(req.ClassName),
		Term:      strings.TrimSpace(req.Term),
		Year:      strings.TrimSpace(req.Year),
	}
	slots := make([]model.ScheduleSlot, 0, len(parsed))
	for _, p := range parsed {
		slot := model.ScheduleSlot{
			Program:    filter.Program,
			ClassName:  filter.ClassName,
			Term:       filter.Term,
			Year:       filter.Year,
			DayOfWeek:  p.Day,
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
			CourseCode: p.CourseCode,
			CourseName: p.CourseName,
			Room:       p.Room,
			Instructor: p.Instructor,
		}
		slot.CreatedBy = &callerID
		slots = append(slots, slot)
	}

	if err := s.repo.ScheduleSlot.ReplaceByFilter(ctx, filter, slots, req.Replace); err != nil {
		s.logger.Error("写入课程表失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("课程表上传完成",
		zap.String("program", filter.Program),
		zap.String("class", filter.ClassName),
		zap.Int("parsed", len(slots)),
		zap.Int("skipped", len(skipped)),
		zap.Bool("replace", req.Replace),
	)
	return &dto.ScheduleUploadResponse{Parsed: len(slots), Skipped: skipped}, nil
}

// ── 辅助函数 ──

func applySlotRequest(slot *model.ScheduleSlot, req *dto.ScheduleSlotRequest) error {
	if req.DayOfWeek < 1 || req.DayOfWeek > 7 {
		return ErrSlotInvalidDay
	}
	start, end := strings.TrimSpace(req.StartTime), strings.TrimSpace(req.EndTime)
	if !clockPattern.MatchString(start) || !clockPattern.MatchString(end) || start >= end {
		return ErrSlotInvalidTime
	}
	slot.Program = strings.TrimSpace(req.Program)
	slot.ClassName = strings.TrimSpace(req.ClassName)
	slot.Term = strings.TrimSpace(req.Term)
	slot.Year = strings.TrimSpace(req.Year)
	slot.DayOfWeek = req.DayOfWeek
	slot.StartTime = start
	slot.EndTime = end
	slot.CourseCode = strings.ToUpperSpecial(turkishCase, spacePattern.ReplaceAllString(req.CourseCode, ""))
	slot.CourseName = strings.TrimSpace(req.CourseName)
	slot.Room = strings.TrimSpace(req.Room)
	slot.Instructor = strings.TrimSpace(req.Instructor)
	return nil
}

func toScheduleFilter(req *dto.ScheduleFilterRequest) *repository.ScheduleFilter {
	return &repository.ScheduleFilter{
		Program:   req.Program,
		ClassName: req.ClassName,
		Term:      req.Term,
		Year:      req.Year,
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toScheduleSlotResponse(s *model.ScheduleSlot) dto.ScheduleSlotResponse {
	return dto.ScheduleSlotResponse{
		ID:         s.SlotID,
		Program:    s.Program,
		ClassName:  s.ClassName,
		Term:       s.Term,
		Year:       s.Year,
		DayOfWeek:  s.DayOfWeek,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		CourseCode: s.CourseCode,
		CourseName: s.CourseName,
		Room:       s.Room,
		Instructor: s.Instructor,
	}
}
