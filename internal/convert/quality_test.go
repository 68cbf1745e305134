package convert

import "testing"

func TestScoreOutput(t *testing.T) {
	q := ScoreOutput("ten chars!", 2, true)
	if q.PageCount != 2 {
		t.Errorf("PageCount = %d", q.PageCount)
	}
	if q.CharsPerPage != 5 {
		t.Errorf("CharsPerPage = %v, want 5", q.CharsPerPage)
	}
	if !q.HasImageStreams {
		t.Error("HasImageStreams should carry through")
	}

	q = ScoreOutput("anything", 0, false)
	if q.CharsPerPage != 0 {
		t.Errorf("zero pages should yield zero CharsPerPage, got %v", q.CharsPerPage)
	}
}

func TestPrintableRatio(t *testing.T) {
	if got := printableRatio(""); got != 0 {
		t.Errorf("empty text ratio = %v", got)
	}
	if got := printableRatio("clean text\nwith lines"); got != 1 {
		t.Errorf("clean text ratio = %v, want 1", got)
	}
	if got := printableRatio("ab\x00\x01"); got != 0.5 {
		t.Errorf("half-garbled ratio = %v, want 0.5", got)
	}
}

func TestWordlikeRatio(t *testing.T) {
	if got := wordlikeRatio(""); got != 0 {
		t.Errorf("empty text ratio = %v", got)
	}
	if got := wordlikeRatio("all normal words here"); got != 1 {
		t.Errorf("normal words ratio = %v, want 1", got)
	}
	got := wordlikeRatio("word ####")
	if got != 0.5 {
		t.Errorf("ratio = %v, want 0.5", got)
	}
}
