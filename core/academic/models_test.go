package academic

import "testing"

func TestLetter(t *testing.T) {
	tests := []struct {
		grade float64
		want  LetterGrade
	}{
		{100, GradeA},
		{90, GradeA},
		{89.9, GradeB},
		{80, GradeB},
		{79.9, GradeC},
		{70, GradeC},
		{69.9, GradeD},
		{60, GradeD},
		{59.9, GradeF},
		{0, GradeF},
	}
	for _, tt := range tests {
		if got := Letter(tt.grade); got != tt.want {
			t.Errorf("Letter(%v) = %v, want %v", tt.grade, got, tt.want)
		}
	}
}

func TestLetterGrade_Ordinal(t *testing.T) {
	if GradeA.Ordinal() != 4 || GradeF.Ordinal() != 0 {
		t.Errorf("Ordinal() ranks = A:%d F:%d, want A:4 F:0", GradeA.Ordinal(), GradeF.Ordinal())
	}
	if GradeA.Ordinal()-GradeB.Ordinal() != 1 {
		t.Error("adjacent bands must differ by one ordinal")
	}
}
