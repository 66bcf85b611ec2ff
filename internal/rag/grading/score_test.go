package grading

import "testing"

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
		nil  bool
	}{
		{name: "thai marker", text: "ความครบถ้วน 40/50\nสรุปคะแนนรวมทั้งหมด: 85/100", want: 85},
		{name: "thai digits", text: "สรุปคะแนนรวมทั้งหมด: ๗๒/๑๐๐", want: 72},
		{name: "english marker", text: "Coverage is good.\nTotal score: 90/100", want: 90},
		{name: "markdown bold", text: "**Total Score:** 64 / 100", want: 64},
		{name: "last marker wins", text: "Total score: 40/100 initially.\nAfter review, Total score: 55/100", want: 55},
		{name: "decimal rounds", text: "Overall score: 77.6/100", want: 78},
		{name: "short thai marker", text: "คะแนนรวม 60 คะแนน", want: 60},
		{name: "scale before score", text: "Total score (out of 100): 85", want: 85},
		{name: "scale without brackets", text: "Total score out of 100: 70", want: 70},
		{name: "slash scale before score", text: "Total score (/100): 42", want: 42},
		{name: "score then scale", text: "Total score: 91 out of 100", want: 91},
		{name: "thai scale before score", text: "สรุปคะแนนรวมทั้งหมด (เต็ม 100 คะแนน): 88", want: 88},
		{name: "thai score from scale", text: "คะแนนรวม 73 จาก 100", want: 73},
		{name: "later marker without number", text: "Total score: 62/100\nThe total score out of 100 needs no curve.", want: 62},
		{name: "above range", text: "Total score: 120/100", nil: true},
		{name: "negative", text: "Total score: -5/100", nil: true},
		{name: "no marker", text: "The answer covers 3 of 4 key points, 80 percent.", nil: true},
		{name: "scale only", text: "Total score out of 100 pending.", nil: true},
		{name: "empty", text: "", nil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseScore(tt.text)
			if tt.nil {
				if got != nil {
					t.Fatalf("expected nil score, got %d", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %d, got nil", tt.want)
			}
			if *got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, *got)
			}
		})
	}
}
