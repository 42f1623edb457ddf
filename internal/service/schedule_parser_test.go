package service

import "testing"

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in         string
		start, end string
		ok         bool
	}{
		{"08:30-10:20", "08:30", "10:20", true},
		{"9.30 - 10.20", "09:30", "10:20", true},
		{"13:00 – 14:50", "13:00", "14:50", true},
		{"10:00-09:00", "", "", false},
		{"25:00-26:00", "", "", false},
		{"Öğle Arası", "", "", false},
	}
	for _, tt := range tests {
		start, end, ok := parseTimeRange(tt.in)
		if ok != tt.ok || start != tt.start || end != tt.end {
			t.Errorf("parseTimeRange(%q) = %s,%s,%v，期望 %s,%s,%v", tt.in, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
}

func TestParseSlotText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want parsedSlot
	}{
		{
			name: "完整单元格",
			in:   "AŞÇ101 Temel Mutfak Uygulamaları\nMutfak 2\nÖğr. Gör. Ahmet Kaya",
			want: parsedSlot{CourseCode: "AŞÇ101", CourseName: "Temel Mutfak Uygulamaları", Room: "Mutfak 2", Instructor: "Öğr. Gör. Ahmet Kaya"},
		},
		{
			name: "代码含空格且教师为主厨",
			in:   "AŞÇ 205 Pastacılık - Şef Mehmet Demir",
			want: parsedSlot{CourseCode: "AŞÇ205", CourseName: "Pastacılık", Instructor: "Şef Mehmet Demir"},
		},
		{
			name: "仅课程名",
			in:   "Hijyen ve Sanitasyon",
			want: parsedSlot{CourseName: "Hijyen ve Sanitasyon"},
		},
		{
			name: "教师与教室同行",
			in:   "AŞÇ 205 Pastacılık Öğr. Gör. Ali Veli Mutfak-2",
			want: parsedSlot{CourseCode: "AŞÇ205", CourseName: "Pastacılık", Room: "Mutfak-2", Instructor: "Öğr. Gör. Ali Veli"},
		},
		{
			name: "教室在教师之前",
			in:   "GAS110 Menü Planlama, Lab 3, Doç. Dr. Ayşe Yıldız",
			want: parsedSlot{CourseCode: "GAS110", CourseName: "Menü Planlama", Room: "Lab 3", Instructor: "Doç. Dr. Ayşe Yıldız"},
		},
		{
			name: "教室编号",
			in:   "TDL101 Türk Dili\nB-204",
			want: parsedSlot{CourseCode: "TDL101", CourseName: "Türk Dili", Room: "B-204"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSlotText(tt.in); got != tt.want {
				t.Errorf("期望 %+v，实际 %+v", tt.want, got)
			}
		})
	}
}

func TestFormatSlotText_RoundTrip(t *testing.T) {
	text := formatSlotText("AŞÇ101", "Temel Mutfak", "Mutfak 2", "Öğr. Gör. Ahmet Kaya")
	got := parseSlotText(text)
	want := parsedSlot{CourseCode: "AŞÇ101", CourseName: "Temel Mutfak", Room: "Mutfak 2", Instructor: "Öğr. Gör. Ahmet Kaya"}
	if got != want {
		t.Errorf("导出文本应能被重新解析，期望 %+v，实际 %+v", want, got)
	}
}

func TestParseScheduleRows(t *testing.T) {
	rows := [][]string{
		{"Aşçılık Programı 1. Sınıf"},
		{"Saat", "Pazartesi", "Salı", "ÇARŞAMBA", "Persembe", "Cuma"},
		{"08:30-10:20", "AŞÇ101 Temel Mutfak\nMutfak 1", "", "TDL101 Türk Dili\n\nATA101 Atatürk İlkeleri", "", ""},
		{"Öğle Arası", "", "Yemek", "", "", ""},
		{"13:00-14:50", "", "---", "", "", "AŞÇ205 Pastacılık"},
	}

	slots, skipped, err := parseScheduleRows(rows)
	if err != nil {
		t.Fatalf("parseScheduleRows 应成功: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("期望解析出 4 个时段，实际=%d: %+v", len(slots), slots)
	}
	if slots[0].Day != 1 || slots[0].StartTime != "08:30" || slots[0].Room != "Mutfak 1" {
		t.Errorf("第一个时段不正确: %+v", slots[0])
	}
	if slots[1].Day != 3 || slots[2].Day != 3 || slots[2].CourseCode != "ATA101" {
		t.Errorf("空行分隔的两门课程应拆分: %+v / %+v", slots[1], slots[2])
	}
	if slots[3].Day != 5 || slots[3].EndTime != "14:50" {
		t.Errorf("最后一个时段不正确: %+v", slots[3])
	}

	if len(skipped) != 2 {
		t.Fatalf("期望跳过 2 个单元格，实际=%+v", skipped)
	}
	cells := map[string]bool{}
	for _, s := range skipped {
		cells[s.Cell] = true
	}
	if !cells["C4"] || !cells["C5"] {
		t.Errorf("应记录被跳过的单元格位置，实际=%+v", skipped)
	}
}

func TestParseScheduleRows_NoHeader(t *testing.T) {
	_, _, err := parseScheduleRows([][]string{{"Saat", "Ders"}, {"08:30-09:20", "AŞÇ101"}})
	if err != ErrScheduleNoHeader {
		t.Errorf("期望 ErrScheduleNoHeader，实际: %v", err)
	}
}
